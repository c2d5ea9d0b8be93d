package collection

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupTimeFormat = "20060102_150405.000"

// BackupManager copies a collection file to and from a backup directory.
type BackupManager struct {
	path string
	dir  string
	now  func() time.Time
}

// NewBackupManager creates a backup manager for the collection at path.
// Backups go to dir, or a "backups" directory next to the collection when
// dir is empty.
func NewBackupManager(path, dir string) *BackupManager {
	if dir == "" {
		dir = filepath.Join(filepath.Dir(path), "backups")
	}
	return &BackupManager{path: path, dir: dir, now: time.Now}
}

// BackupInfo contains information about a backup file.
type BackupInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// Dir returns the backup directory.
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// Backup copies the collection into the backup directory and verifies the
// copy decodes. It returns the backup path.
func (bm *BackupManager) Backup() (string, error) {
	if err := verifyCollection(bm.path); err != nil {
		return "", err
	}
	if err := os.MkdirAll(bm.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(bm.path), filepath.Ext(bm.path))
	name := fmt.Sprintf("%s_%s%s", stem, bm.now().Format(backupTimeFormat), Extension)
	backupPath := filepath.Join(bm.dir, name)

	if err := copyFile(bm.path, backupPath); err != nil {
		return "", err
	}
	if err := verifyCollection(backupPath); err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	return backupPath, nil
}

// Restore replaces the collection with a backup. The current file is kept
// next to it with an ".old.<timestamp>" suffix.
func (bm *BackupManager) Restore(backupPath string) error {
	if err := verifyCollection(backupPath); err != nil {
		return fmt.Errorf("backup verification failed: %w", err)
	}

	tempPath := bm.path + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return err
	}

	if _, err := os.Stat(bm.path); err == nil {
		oldPath := bm.path + ".old." + bm.now().Format("20060102_150405")
		if err := os.Rename(bm.path, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current collection aside: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.path); err != nil {
		return fmt.Errorf("failed to restore collection: %w", err)
	}
	return nil
}

// ListBackups returns the backups in the backup directory, newest first.
func (bm *BackupManager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		backupPath := filepath.Join(bm.dir, entry.Name())
		checksum, err := calculateChecksum(backupPath)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:     backupPath,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	// Names embed the timestamp, so they sort chronologically.
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

func verifyCollection(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("collection file not found: %w", err)
	}
	_, err := Load(path)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// calculateChecksum calculates the SHA-256 checksum of a file.
func calculateChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
