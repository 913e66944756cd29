package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hengadev/serdex"
	"github.com/hengadev/serdex/internal/backend"
	s3bucket "github.com/hengadev/serdex/providers/s3"
)

func (a *app) convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Transcode a document from one format to another",
		Example: `  serdex convert --in user.json --to yaml
  cat user.yaml | serdex convert --from yaml --to json --field-rename lower_camel
  serdex convert --in s3://docs/user.json --out s3://docs/converted/ --to msgpack`,
		Args: cobra.NoArgs,
		RunE: a.runConvert,
	}
	cmd.Flags().String("from", "", "input format, inferred from the --in extension when empty")
	cmd.Flags().String("to", "", "output format, inferred from the --out extension when empty")
	cmd.Flags().String("in", "-", "input file, - for stdin, or s3://bucket/key")
	cmd.Flags().String("out", "-", "output file, - for stdout, or s3://bucket/key (a trailing / generates a name)")
	cmd.Flags().String("field-rename", "", "naming policy applied to every object key (defaults to the config field_rename)")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, _ []string) error {
	in, out := a.v.GetString("in"), a.v.GetString("out")

	from, err := resolveFormat(a.v.GetString("from"), in, "--from")
	if err != nil {
		return err
	}
	to, err := resolveFormat(a.v.GetString("to"), out, "--to")
	if err != nil {
		return err
	}
	policy, err := a.fieldRename()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	hook := serdex.DefaultObservabilityHook()
	metadata := map[string]any{"from": from, "to": to, "format": to}
	start := time.Now()
	hook.OnProcessStart(ctx, "convert", metadata)

	err = a.convert(cmd, in, out, from, to, policy)

	if err != nil {
		hook.OnError(ctx, "convert", err, metadata)
	}
	hook.OnProcessComplete(ctx, "convert", time.Since(start), err, metadata)
	return err
}

func (a *app) convert(cmd *cobra.Command, in, out, from, to string, policy serdex.NamingPolicy) error {
	data, err := a.readInput(cmd, in)
	if err != nil {
		return err
	}

	var converted []byte
	if policy.Transform() == nil {
		converted, err = serdex.Convert(data, from, to)
	} else {
		converted, err = transcodeWithNaming(data, from, to, policy)
	}
	if err != nil {
		return fmt.Errorf("convert %s to %s: %w", from, to, err)
	}
	return a.writeOutput(cmd, out, to, converted)
}

// fieldRename prefers --field-rename (or SERDEX_FIELD_RENAME) over the
// field_rename of the loaded configuration.
func (a *app) fieldRename() (serdex.NamingPolicy, error) {
	if name := a.v.GetString("field-rename"); name != "" {
		return serdex.ParseNamingPolicy(name)
	}
	return a.cfg.FieldRename, nil
}

func transcodeWithNaming(data []byte, from, to string, policy serdex.NamingPolicy) ([]byte, error) {
	src, err := backend.LookupFormat(from)
	if err != nil {
		return nil, err
	}
	dst, err := backend.LookupFormat(to)
	if err != nil {
		return nil, err
	}
	d, err := src.NewDeserializer(data)
	if err != nil {
		return nil, err
	}
	return dst.Encode(func(s serdex.Serializer) error {
		return serdex.TranscodeWithNaming(d, s, policy)
	})
}

// resolveFormat returns the explicit format, or the one implied by the
// extension of location.
func resolveFormat(explicit, location, flag string) (string, error) {
	if explicit != "" {
		return backend.ParseFormat(explicit)
	}
	ext := strings.TrimPrefix(filepath.Ext(location), ".")
	if location == "-" || ext == "" {
		return "", fmt.Errorf("%s is required when it cannot be inferred from '%s'", flag, location)
	}
	return backend.ParseFormat(ext)
}

func (a *app) readInput(cmd *cobra.Command, in string) ([]byte, error) {
	switch {
	case in == "" || in == "-":
		return io.ReadAll(cmd.InOrStdin())
	case s3bucket.IsLocation(in):
		loc, err := s3bucket.ParseLocation(in)
		if err != nil {
			return nil, err
		}
		store, err := a.objects(cmd.Context())
		if err != nil {
			return nil, err
		}
		body, err := store.Open(cmd.Context(), loc.Bucket, loc.Key)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return io.ReadAll(body)
	default:
		return os.ReadFile(in)
	}
}

func (a *app) writeOutput(cmd *cobra.Command, out, format string, data []byte) error {
	switch {
	case out == "" || out == "-":
		w := cmd.OutOrStdout()
		if _, err := w.Write(data); err != nil {
			return err
		}
		if format == "json" {
			_, err := io.WriteString(w, "\n")
			return err
		}
		return nil
	case s3bucket.IsLocation(out):
		loc, err := s3bucket.ParseLocation(out)
		if err != nil {
			return err
		}
		loc.Key = s3bucket.ObjectKey(loc.Key, format)
		store, err := a.objects(cmd.Context())
		if err != nil {
			return err
		}
		w, err := store.Create(cmd.Context(), loc.Bucket, loc.Key, s3bucket.ContentType(format))
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		a.logger.Info("document written", "location", loc.String(), "bytes", len(data))
		fmt.Fprintln(cmd.OutOrStdout(), loc.String())
		return nil
	default:
		return os.WriteFile(out, data, 0o644)
	}
}
