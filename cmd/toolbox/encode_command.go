package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbox/internal/ipc"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var spec ipc.EncodeSpec

	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Transcode a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Input = args[0]
			if spec.OutputFolder == "" {
				if cfg := ctx.configValue(); cfg != nil {
					spec.OutputFolder = cfg.Paths.OutputDir
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartEncode(spec)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Encode started (job %s)\n", resp.JobID)
				fmt.Fprintf(stdout, "Output: %s\n", resp.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&spec.OutputFolder, "output-folder", "o", "", "Destination folder (defaults next to the input)")
	cmd.Flags().StringVar(&spec.OutputSuffix, "suffix", "", "Output file name suffix")
	cmd.Flags().StringVarP((*string)(&spec.Format), "format", "f", "", "Output container (mp4, mkv, mov, webm)")
	cmd.Flags().StringVar((*string)(&spec.Codec), "codec", "", "Video codec (h264, h265, vp9, nvenc variants, or copy)")
	cmd.Flags().StringVar((*string)(&spec.Resolution), "resolution", "", "Target resolution (e.g. 1080p, or source)")
	cmd.Flags().StringVar(&spec.Preset, "preset", "", "Encoder preset")
	cmd.Flags().StringVar((*string)(&spec.RateMode), "rate-mode", "", "Rate control mode (crf or bitrate)")
	cmd.Flags().IntVar(&spec.CRF, "crf", 0, "Constant rate factor")
	cmd.Flags().IntVar(&spec.BitrateK, "bitrate", 0, "Video bitrate in kbit/s (bitrate mode)")
	cmd.Flags().StringVar(&spec.FPS, "fps", "", "Output frame rate")
	cmd.Flags().StringVar((*string)(&spec.AudioCodec), "audio-codec", "", "Audio codec (aac, opus, mp3, copy, or none)")
	cmd.Flags().StringVar(&spec.AudioBitrate, "audio-bitrate", "", "Audio bitrate (e.g. 192k)")
	cmd.Flags().StringSliceVar(&spec.ExtraAudioInputs, "extra-audio", nil, "Additional audio input files")
	cmd.Flags().StringSliceVar(&spec.ExtraSubtitleInputs, "extra-subtitle", nil, "Additional subtitle input files")
	cmd.Flags().IntVar(&spec.Threads, "threads", 0, "ffmpeg thread count")
	cmd.Flags().StringVar(&spec.CustomArgs, "custom-args", "", "Extra ffmpeg arguments")

	return cmd
}
