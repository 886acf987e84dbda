package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"atmerge/atrules"
	"atmerge/css"
	"atmerge/state"
)

// session carries everything processing of a single stylesheet needs and
// collects run totals.
type session struct {
	env    *state.LocalEnv
	proc   *atrules.Processor
	parser *css.Parser
	dst    string
	log    *zap.Logger

	sheets      int
	failed      int
	diagnostics int
}

func newSession(env *state.LocalEnv, proc *atrules.Processor, dst string, log *zap.Logger) *session {
	return &session{
		env:    env,
		proc:   proc,
		parser: css.NewParser(log),
		dst:    dst,
		log:    log,
	}
}

// processSheet processes single stylesheet. "src" is part of the source path
// (always including file name) relative to the original path: base file name
// when file was specified directly, relative path inside archive or
// directory otherwise.
func (s *session) processSheet(ctx context.Context, r io.Reader, enc srcEncoding, src string) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.sheets++
	index := s.sheets
	var outputName string

	log := s.log.With(zap.String("from", src))
	log.Info("Stylesheet processing starting", zap.Stringer("bom", enc))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Stylesheet processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		} else if rerr == nil {
			log.Info("Stylesheet processing completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
		if rerr != nil {
			s.failed++
		}
	}(time.Now())

	data, err := io.ReadAll(selectReader(r, enc))
	if err != nil {
		return fmt.Errorf("unable to read stylesheet (%s): %w", src, err)
	}
	if enc == encUnknown {
		var cs string
		if data, cs, err = decodeCharset(data); err != nil {
			return fmt.Errorf("unable to decode stylesheet (%s) from %s: %w", src, cs, err)
		}
		if len(cs) > 0 {
			log.Debug("Stylesheet converted to UTF-8", zap.String("charset", cs))
		}
	}

	sheet, err := s.parser.Parse(data, src)
	if err != nil {
		return fmt.Errorf("unable to parse stylesheet (%s): %w", src, err)
	}
	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet problem ignored", zap.String("problem", w))
	}
	resetCharset(sheet)

	rptDir := fmt.Sprintf("sheets/%d-%s", index, filepath.Base(src))
	if s.env.Rpt != nil {
		s.env.Rpt.StoreData(rptDir+"/before.txt", []byte(sheet.Dump()))
	}

	diags := s.proc.Run(sheet)
	s.diagnostics += len(diags)

	if s.env.Rpt != nil {
		s.env.Rpt.StoreData(rptDir+"/after.txt", []byte(sheet.Dump()))
		if len(diags) > 0 {
			s.env.Rpt.StoreData(rptDir+"/diagnostics.txt", []byte(atrules.DumpDiagnostics(src, diags)))
		}
	}

	outputName = buildOutputPath(src, s.dst, index, s.env)
	if err := prepareDestination(outputName, s.env.Overwrite, log); err != nil {
		return err
	}
	sheet.SetIndent(s.env.Cfg.Output.Indent)
	if err := writeSheet(sheet, outputName); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// output may be replaced by a later source when overwriting is allowed
	if err := s.env.Rpt.StoreCopy(rptDir+"/result"+filepath.Ext(outputName), outputName); err != nil {
		log.Warn("Unable to store result in debug report", zap.Error(err))
	}
	return nil
}

// resetCharset makes @charset rule agree with produced UTF-8 output.
func resetCharset(sheet *css.Stylesheet) {
	for _, id := range sheet.Children(sheet.Root()) {
		if sheet.Type(id) == css.NodeAtRule && sheet.Name(id) == "charset" && !sheet.HasBlock(id) {
			if !strings.EqualFold(sheet.Params(id), `"utf-8"`) {
				sheet.SetParams(id, `"UTF-8"`)
			}
		}
	}
}

// prepareDestination refuses to clobber existing output unless asked to and
// makes sure output directory exists.
func prepareDestination(name string, overwrite bool, log *zap.Logger) error {
	_, err := os.Stat(name)
	switch {
	case err == nil:
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return os.Remove(name)
	case !os.IsNotExist(err):
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func writeSheet(sheet *css.Stylesheet, name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	_, err = sheet.WriteTo(f)
	return err
}
