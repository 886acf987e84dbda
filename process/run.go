// Package process implements "process" command: it locates stylesheets,
// runs at-rule passes over them and writes results.
package process

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"atmerge/archive"
	"atmerge/atrules"
	"atmerge/state"
)

// Run is the action of the process command: it resolves SOURCE and
// DESTINATION arguments and restructures every stylesheet found.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Logger().Named("process")

	src, dst, err := resolveArgs(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	opts, err := buildOptions(env.Cfg.Processing, cmd)
	if err != nil {
		return err
	}
	proc, err := atrules.NewProcessor(log, opts)
	if err != nil {
		return fmt.Errorf("unable to prepare processing: %w", err)
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	s := newSession(env, proc, dst, log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.Bool("flatten", opts.Flatten), zap.Bool("merge", opts.Merge), zap.Bool("nest", opts.Nest))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int("stylesheets", s.sheets), zap.Int("failed", s.failed), zap.Int("diagnostics", s.diagnostics))
	}(time.Now())

	return process(ctx, src, s)
}

// resolveArgs returns absolute source and destination, destination defaults
// to the working directory.
func resolveArgs(args []string) (src, dst string, err error) {
	if len(args) == 0 || len(args[0]) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(args[0]); err != nil {
		return "", "", err
	}
	if len(args) > 1 && len(args[1]) > 0 {
		dst = args[1]
	} else if dst, err = os.Getwd(); err != nil {
		return "", "", fmt.Errorf("unable to get working directory: %w", err)
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	return src, dst, nil
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Source path may continue inside an archive.
func process(ctx context.Context, src string, s *session) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, s); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// path inside archive, slash separated
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := processArchive(ctx, head, tail, "", s); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		sheet, enc, err := isSheetFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if sheet && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open file: %w", err)
			}
			defer file.Close()
			if err := s.processSheet(ctx, file, enc, filepath.Base(head)); err != nil {
				s.log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as stylesheet (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding stylesheets and archives and
// processes them. Symbolic links are not followed.
func processDir(ctx context.Context, dir string, s *session) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			s.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			s.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := archive.IsArchive(path)
		if err != nil {
			s.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(rel), s); err != nil {
				s.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		sheet, enc, err := isSheetFile(path)
		if err != nil {
			s.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !sheet {
			s.log.Debug("Skipping file, not recognized as stylesheet or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			s.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		if err := s.processSheet(ctx, file, enc, rel); err != nil {
			s.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processArchive walks all files inside archive, finds stylesheets under
// "pathIn" and processes them placing output under "pathOut".
func processArchive(ctx context.Context, path, pathIn, pathOut string, s *session) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			s.log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	return archive.Walk(ctx, path, pathIn, func(arc string, f *zip.File) error {
		sheet, enc, err := isSheetInArchive(f)
		if err != nil {
			s.log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !sheet {
			s.log.Debug("Skipping file, not recognized as stylesheet", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			s.log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		if err := s.processSheet(ctx, r, enc, filepath.Join(pathOut, archiveName(f, s))); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
}

// archiveName returns entry name, forcing configured code page for names
// not marked as UTF-8.
func archiveName(f *zip.File, s *session) string {
	name := f.FileHeader.Name
	cp := s.env.CodePage
	if cp == nil || !f.FileHeader.NonUTF8 {
		return filepath.FromSlash(name)
	}
	n, err := cp.NewDecoder().String(name)
	if err != nil {
		cs, _ := ianaindex.IANA.Name(cp)
		s.log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", cs), zap.String("path", name), zap.Error(err))
		n = name
	}
	return filepath.FromSlash(n)
}
