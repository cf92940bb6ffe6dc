/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"topodraw/internal/domain"
)

const (
	// DesignFileExt is the extension used for standalone design documents.
	DesignFileExt  = ".topo.json"
	BackupsDirName = "backups"

	backupStamp = "20060102-150405.000"
)

// SaveFile writes d to path with transactional semantics: the previous file
// (if any) is copied to a timestamped backup in a sibling backups/ directory,
// the new content goes to a synced temp file which is then renamed over path.
func SaveFile(path string, d domain.Design) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	data, err := MarshalDesign(d)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().Format(backupStamp)
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current file: %w", cerr)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", werr)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace file: %w", rerr)
	}
	return nil
}

// OpenFile loads a design document. If the file is missing or corrupt the
// newest backup is used instead.
func OpenFile(path string) (domain.Design, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		d, berr := openFromLatestBackup(path)
		if berr != nil {
			return domain.Design{}, fmt.Errorf("open design file: %w; backup attempt: %v", err, berr)
		}
		return d, nil
	}
	d, derr := ParseDesign(b)
	if derr != nil {
		bd, berr := openFromLatestBackup(path)
		if berr != nil {
			return domain.Design{}, fmt.Errorf("parse design file: %w; backup attempt: %v", derr, berr)
		}
		return bd, nil
	}
	return d, nil
}

// MarshalDesign renders d in the indented interchange format.
func MarshalDesign(d domain.Design) ([]byte, error) {
	data, err := json.MarshalIndent(d.Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal design: %w", err)
	}
	return append(data, '\n'), nil
}

// Backups lists the backup files for path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // fixed-width stamps sort chronologically
	return out, nil
}

func openFromLatestBackup(path string) (domain.Design, error) {
	candidates, err := Backups(path)
	if err != nil {
		return domain.Design{}, err
	}
	if len(candidates) == 0 {
		return domain.Design{}, errors.New("no backups found")
	}
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return domain.Design{}, fmt.Errorf("read latest backup: %w", err)
	}
	d, err := ParseDesign(b)
	if err != nil {
		return domain.Design{}, fmt.Errorf("parse latest backup: %w", err)
	}
	return d, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
