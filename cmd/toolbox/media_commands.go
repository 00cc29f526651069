package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbox/internal/ipc"
	"toolbox/internal/toolargs"
)

func newExtractAudioCommand(ctx *commandContext) *cobra.Command {
	var spec ipc.ExtractAudioSpec

	cmd := &cobra.Command{
		Use:   "extract-audio <input>",
		Short: "Extract the audio track from a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Input = args[0]
			if spec.OutputFolder == "" {
				if cfg := ctx.configValue(); cfg != nil {
					spec.OutputFolder = cfg.Paths.OutputDir
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartExtractAudio(spec)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Audio extraction started (job %s)\n", resp.JobID)
				fmt.Fprintf(stdout, "Output: %s\n", resp.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&spec.OutputFolder, "output-folder", "o", "", "Destination folder (defaults next to the input)")
	cmd.Flags().StringVarP((*string)(&spec.Format), "format", "f", "", "Audio format (mp3, aac, flac, wav, ogg, opus)")
	cmd.Flags().StringVar(&spec.SampleRate, "sample-rate", "", "Sample rate (44100, 48000, 96000)")
	cmd.Flags().StringVar(&spec.Bitrate, "bitrate", "", "Audio bitrate (e.g. 192k)")
	cmd.Flags().StringVar(&spec.FLACLevel, "flac-level", "", "FLAC compression level (0-8)")
	cmd.Flags().StringVar((*string)(&spec.MP3Mode), "mp3-mode", "", "MP3 rate mode (cbr or vbr)")
	cmd.Flags().StringVar(&spec.MP3Quality, "mp3-quality", "", "MP3 VBR quality (0-9)")

	return cmd
}

func newTrimCommand(ctx *commandContext) *cobra.Command {
	var spec ipc.TrimSpec

	cmd := &cobra.Command{
		Use:   "trim <input>",
		Short: "Cut a clip from a video without re-encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Input = args[0]
			if spec.OutputFolder == "" {
				if cfg := ctx.configValue(); cfg != nil {
					spec.OutputFolder = cfg.Paths.OutputDir
				}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartTrim(spec)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Trim started (job %s)\n", resp.JobID)
				fmt.Fprintf(stdout, "Output: %s\n", resp.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&spec.OutputFolder, "output-folder", "o", "", "Destination folder (defaults next to the input)")
	cmd.Flags().Float64VarP(&spec.StartSeconds, "start", "s", 0, "Clip start in seconds")
	cmd.Flags().Float64VarP(&spec.EndSeconds, "end", "e", 0, "Clip end in seconds")

	return cmd
}

func newGifCommand(ctx *commandContext) *cobra.Command {
	var spec ipc.GifSpec
	var crop []int

	cmd := &cobra.Command{
		Use:   "gif <input>",
		Short: "Convert a video clip into an animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.Input = args[0]
			if spec.OutputFolder == "" {
				if cfg := ctx.configValue(); cfg != nil {
					spec.OutputFolder = cfg.Paths.OutputDir
				}
			}
			if len(crop) > 0 {
				if len(crop) != 4 {
					return fmt.Errorf("--crop expects x,y,width,height")
				}
				spec.Crop = &toolargs.Crop{X: crop[0], Y: crop[1], W: crop[2], H: crop[3]}
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.StartGif(spec)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "GIF conversion started (job %s)\n", resp.JobID)
				fmt.Fprintf(stdout, "Output: %s\n", resp.OutputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&spec.OutputFolder, "output-folder", "o", "", "Destination folder (defaults next to the input)")
	cmd.Flags().IntVar(&spec.FPS, "fps", 0, "GIF frame rate (defaults to 15)")
	cmd.Flags().IntVarP(&spec.Width, "width", "w", 0, "Output width in pixels (defaults to 480)")
	cmd.Flags().Float64Var(&spec.Speed, "speed", 0, "Playback speed multiplier")
	cmd.Flags().Float64VarP(&spec.StartSeconds, "start", "s", 0, "Clip start in seconds")
	cmd.Flags().Float64VarP(&spec.EndSeconds, "end", "e", 0, "Clip end in seconds")
	cmd.Flags().IntSliceVar(&crop, "crop", nil, "Crop rectangle as x,y,width,height")

	return cmd
}
