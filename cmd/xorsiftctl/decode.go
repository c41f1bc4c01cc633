package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RowanDark/xorsift/internal/analysis"
	"github.com/RowanDark/xorsift/internal/cipher"
	"github.com/RowanDark/xorsift/internal/search"
)

type decodeOutput struct {
	Format  cipher.Format    `json:"format"`
	Length  int              `json:"length"`
	Bytes   analysis.ByteSeq `json:"bytes"`
	Encoded string           `json:"encoded,omitempty"`
}

func newDecodeCmd(a *app) *cobra.Command {
	var (
		format  string
		to      string
		policy  string
		reverse bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "decode <text>",
		Short: "Decode text into bytes, detecting the format unless --format is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := cipher.ParseFormat(format)
			if err != nil {
				return err
			}
			p, err := a.policy(policy)
			if err != nil {
				return err
			}
			decoded, err := cipher.Decoder{Policy: p, Reverse: reverse}.Decode(cmd.Context(), args[0], from)
			if err != nil {
				return err
			}

			target, err := cipher.ParseFormat(to)
			if err != nil {
				return err
			}
			if target == cipher.FormatAuto {
				target = cipher.FormatHex
			}
			encoded, err := cipher.Encode(decoded.Bytes, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, decodeOutput{
					Format:  decoded.Format,
					Length:  len(decoded.Bytes),
					Bytes:   decoded.Bytes,
					Encoded: encoded,
				})
			}
			a.printer.Title(fmt.Sprintf("Decoded %d bytes as %s", len(decoded.Bytes), decoded.Format))
			fmt.Fprintln(out, encoded)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format (auto, base64, hex, decimal, octal, binary, ascii)")
	cmd.Flags().StringVar(&to, "to", "", "format the bytes are printed in (default hex)")
	cmd.Flags().StringVar(&policy, "policy", "", "numeral range policy (wrap, clamp, reject)")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "reverse the text before decoding")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text>",
		Short: "List every format the text could be, most likely first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detections, err := cipher.NewSmartDetector().Detect(cmd.Context(), []byte(args[0]))
			if err != nil {
				return err
			}
			a.printer.Title(fmt.Sprintf("Auto decoding would use %s", detections[0].Format))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tCONFIDENCE\tREASONING")
			for _, d := range detections {
				fmt.Fprintf(tw, "%s\t%.1f\t%s\n", d.Format, d.Confidence, d.Reasoning)
			}
			return tw.Flush()
		},
	}
}

func newMatrixCmd(a *app) *cobra.Command {
	var (
		format  string
		policy  string
		reverse bool
	)
	cmd := &cobra.Command{
		Use:   "matrix <ciphertext>",
		Short: "List the matrix shapes that exactly cover the ciphertext bits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := cipher.ParseFormat(firstNonEmpty(format, a.cfg.Decode.CiphertextFormat))
			if err != nil {
				return err
			}
			p, err := a.policy(policy)
			if err != nil {
				return err
			}
			decoded, err := cipher.Decoder{Policy: p, Reverse: reverse}.Decode(cmd.Context(), args[0], from)
			if err != nil {
				return err
			}
			if len(decoded.Bytes) == 0 {
				return search.ErrEmptyInput
			}
			a.printer.RenderMatrixOptions(len(decoded.Bytes)*8, search.MatrixOptions(decoded.Bytes))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "ciphertext format")
	cmd.Flags().StringVar(&policy, "policy", "", "numeral range policy (wrap, clamp, reject)")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "reverse the text before decoding")
	return cmd
}
