package config

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"atmerge/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to a temporary file.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{file: f, entries: make(map[string]entry)}, nil
}

// entry is a single archive member: either in-memory data or a file read at
// the time report is finalized.
type entry struct {
	origin string
	path   string
	stamp  time.Time
	data   []byte
	// snapshot directory owned by the report
	temp string
}

// Report accumulates everything needed to troubleshoot a run: active
// configuration, logs, stylesheet dumps before and after processing,
// diagnostics and produced files. Nil report ignores all calls, so callers
// do not have to check whether reporting was requested.
// NOTE: presently not to be used concurrently!
type Report struct {
	entries map[string]entry
	file    *os.File
	header  string
}

// SetHeader sets first line of the report manifest, normally identifying the
// run which produced it.
func (r *Report) SetHeader(header string) {
	if r == nil {
		return
	}
	r.header = header
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be put in the archive under name. File is read
// when report is closed.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if old, ok := r.entries[name]; ok && old.origin != path {
		panic(fmt.Sprintf("report entry [%s] already refers to %s, attempt to replace it with %s", name, old.origin, path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	r.entries[name] = entry{origin: path, path: abs}
}

// StoreData puts data in the archive under name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, ok := r.entries[name]; ok {
		panic(fmt.Sprintf("report entry [%s] already has data", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy snapshots file as it is now, later changes to it do not affect
// the report. Repeated names get a timestamp suffix so the same output may be
// recorded more than once.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("unable to store copy of '%s': not a regular file", path)
	}

	e := entry{origin: path, stamp: time.Now()}
	if _, ok := r.entries[name]; ok {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}

	if e.temp, err = os.MkdirTemp("", misc.GetAppName()+"-r-"); err != nil {
		return err
	}
	if e.path, err = snapshot(e.temp, abs, info.ModTime()); err != nil {
		return multierr.Append(err, os.RemoveAll(e.temp))
	}
	r.entries[name] = e
	return nil
}

func snapshot(dir, src string, modTime time.Time) (_ string, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(out, in); err != nil {
		return "", multierr.Append(err, out.Close())
	}
	if err = out.Close(); err != nil {
		return "", err
	}
	return dst, os.Chtimes(dst, modTime, modTime)
}

// Close writes the archive and removes snapshots.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}

	err := r.finalize()
	err = multierr.Append(err, r.file.Close())
	for _, e := range r.entries {
		if len(e.temp) > 0 {
			err = multierr.Append(err, os.RemoveAll(e.temp))
		}
	}
	return err
}

func (r *Report) finalize() (err error) {
	arc := zip.NewWriter(r.file)
	defer func() {
		err = multierr.Append(err, arc.Close())
	}()

	names, manifest := prepareManifest(r.header, r.entries)
	if err := addMember(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}
	for _, name := range names {
		if err := r.addEntry(arc, name, r.entries[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) addEntry(arc *zip.Writer, name string, e entry) error {
	if len(e.path) == 0 {
		return addMember(arc, name, e.stamp, bytes.NewReader(e.data))
	}

	f, err := os.Open(e.path)
	if errors.Is(err, os.ErrNotExist) {
		// file may never have been created, log for example
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}
	return addMember(arc, name, info.ModTime(), f)
}

// prepareManifest lists entries in natural order so numbered stylesheet
// dumps follow processing sequence.
func prepareManifest(header string, entries map[string]entry) ([]string, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	if len(header) > 0 {
		buf.WriteString(header + "\n")
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))

	now := time.Now()
	for _, k := range keys {
		e := entries[k]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		source := "<data>"
		if len(e.path) > 0 {
			source = e.origin + " : " + e.path
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), k, source)
	}
	return keys, buf
}

func addMember(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
