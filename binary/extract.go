package binary

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
)

// extract unpacks the archive into destination and removes the archive afterwards.
func extract(fsys afero.Fs, archive, destination string, kind ArchiveKind) (err error) {
	logdetail(fmt.Sprintf("extracting %s", archive))

	start := time.Now()
	defer func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			color.New(color.FgRed).Fprintf(color.Error, "     ✘ %s\n", elapsed)
			return
		}
		color.New(color.FgGreen).Fprintf(color.Error, "     ✔ %s\n", elapsed)
	}()

	file, err := fsys.Open(archive)
	if err != nil {
		return fmt.Errorf("%w: failed to open archive: %w", ErrExtraction, err)
	}
	defer fsys.Remove(archive)
	defer file.Close()

	switch kind {
	case ArchiveTarGz:
		err = untar(fsys, file, destination)
	case ArchiveZip:
		info, staterr := file.Stat()
		if staterr != nil {
			return fmt.Errorf("%w: failed to stat archive: %w", ErrExtraction, staterr)
		}
		err = unzip(fsys, file, info.Size(), destination)
	default:
		return fmt.Errorf("%w: unsupported format: %s", ErrExtraction, kind)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return nil
}

// handles .tar.gz files
func untar(fsys afero.Fs, file io.Reader, destination string) error {
	decompressor, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer decompressor.Close()

	reader := tar.NewReader(decompressor)

	for {
		header, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		target, err := within(destination, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := write(fsys, target, header.FileInfo().Mode(), reader); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := symlink(fsys, destination, target, header.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := within(destination, header.Linkname)
			if err != nil {
				return err
			}
			if err := duplicate(fsys, source, target); err != nil {
				return fmt.Errorf("failed to link %s to %s: %w", header.Name, header.Linkname, err)
			}
		default:
			logdetail(fmt.Sprintf("  skipping %s", header.Name))
		}
	}

	return nil
}

// handles .zip files, .vsix packages included
func unzip(fsys afero.Fs, file io.ReaderAt, size int64, destination string) error {
	reader, err := zip.NewReader(file, size)
	if err != nil {
		return fmt.Errorf("failed to create zip reader: %w", err)
	}

	for _, file := range reader.File {
		target, err := within(destination, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			continue
		}

		contents, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", file.Name, err)
		}

		err = write(fsys, target, file.Mode(), contents)
		contents.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func write(fsys afero.Fs, target string, mode fs.FileMode, contents io.Reader) error {
	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}

	out, err := fsys.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, contents); err != nil {
		return fmt.Errorf("failed to copy data to file %s: %w", target, err)
	}

	return nil
}

// symlink recreates a symbolic link, refusing links that point outside destination.
// Filesystems without symlink support get a copy of the linked file instead, so the
// linked entry has to appear earlier in the archive.
func symlink(fsys afero.Fs, destination, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("illegal link in archive: %s -> %s", target, linkname)
	}

	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))
	rel, err := filepath.Rel(destination, resolved)
	if err != nil {
		return fmt.Errorf("illegal link in archive: %s -> %s", target, linkname)
	}
	source, err := within(destination, filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("illegal link in archive: %s -> %s", target, linkname)
	}

	if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	if linker, ok := fsys.(afero.Linker); ok {
		// leftovers of an interrupted extraction
		_ = fsys.Remove(target)
		if err := linker.SymlinkIfPossible(filepath.FromSlash(linkname), target); err != nil {
			return fmt.Errorf("failed to link %s to %s: %w", target, linkname, err)
		}
		return nil
	}

	if err := duplicate(fsys, source, target); err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", target, linkname, err)
	}
	return nil
}

// duplicate copies an already extracted file to target, keeping its permissions.
func duplicate(fsys afero.Fs, source, target string) error {
	info, err := fsys.Stat(source)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", source)
	}

	in, err := fsys.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	return write(fsys, target, info.Mode(), in)
}

// within joins name to destination rejecting names that would escape it.
func within(destination, name string) (string, error) {
	target := filepath.Join(destination, filepath.FromSlash(name))

	rel, err := filepath.Rel(destination, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}

	return target, nil
}
