package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"toolbox/internal/ipc"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <input>",
		Short: "Show media file details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Inspect(args[0])
				if err != nil {
					return err
				}
				media := resp.Media
				rows := [][]string{
					{"Container", media.Container},
					{"Resolution", media.Resolution},
					{"Duration", media.Duration},
					{"Video codec", media.VideoCodec},
					{"Frame rate", formatFPS(media.FPS)},
					{"Bitrate", media.Bitrate},
					{"Audio streams", strconv.Itoa(media.AudioStreams)},
					{"Size", formatBytes(media.SizeBytes)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Property", "Value"}, rows,
					[]columnAlignment{alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newEncodersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encoders",
		Short: "Show hardware encoder support of the configured ffmpeg",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Encoders()
				if err != nil {
					return err
				}
				rows := [][]string{
					{"NVENC", yesNo(resp.NVENC)},
					{"AMF", yesNo(resp.AMF)},
					{"QSV", yesNo(resp.QSV)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Encoder", "Available"}, rows,
					[]columnAlignment{alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func formatFPS(fps float64) string {
	if fps <= 0 {
		return "unknown"
	}
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
