package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbox/internal/ipc"
	"toolbox/internal/toolargs"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var spec ipc.DownloadSpec
	var audioOnly bool

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video or its audio with yt-dlp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.URL = args[0]
			if audioOnly {
				spec.Mode = toolargs.ModeAudio
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartDownload(spec)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Download started (job %s)\n", resp.JobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&spec.OutputFolder, "output-folder", "o", "", "Destination folder (defaults to the configured download directory)")
	cmd.Flags().StringVarP(&spec.FileName, "name", "n", "", "Fixed output file name (defaults to the video title)")
	cmd.Flags().BoolVarP(&audioOnly, "audio", "a", false, "Extract audio instead of downloading video")
	cmd.Flags().StringVarP((*string)(&spec.Format), "format", "f", "", "Target container for video downloads (mp4, mkv, mov, webm)")
	cmd.Flags().StringVar(&spec.FormatID, "format-id", "", "Explicit yt-dlp format id")
	cmd.Flags().StringVarP(&spec.Quality, "quality", "q", "", "Quality cap: best or a max height like 1080")
	cmd.Flags().StringVar((*string)(&spec.AudioFormat), "audio-format", "", "Audio format for --audio (defaults to mp3)")
	cmd.Flags().StringVar(&spec.AudioBitrate, "audio-bitrate", "", "Audio bitrate for --audio (e.g. 192K)")
	cmd.Flags().StringVar((*string)(&spec.VideoCodec), "video-codec", "", "Re-encode video with this codec (h264, h265, vp9, av1, copy)")
	cmd.Flags().StringVar(&spec.VideoBitrate, "video-bitrate", "", "Video bitrate for re-encode (e.g. 2500k)")
	cmd.Flags().StringVar(&spec.FPS, "fps", "", "Frame rate for re-encode")

	return cmd
}
