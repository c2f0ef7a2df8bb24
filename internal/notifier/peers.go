package notifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// Peer is another live process using the same profile.
type Peer struct {
	PID        int
	Executable string
}

// Announce records this process as a user of the profile in profileDir.
// The returned release func removes the record and must be called on exit.
func Announce(profileDir string) (func(), error) {
	dir := filepath.Join(profileDir, constants.PeerDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return func() {}, fmt.Errorf("failed to create peer directory: %w", err)
	}

	pid := getpidFunc()
	path := filepath.Join(dir, strconv.Itoa(pid)+constants.PeerFileSuffix)
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0600); err != nil {
		return func() {}, fmt.Errorf("failed to write peer file: %w", err)
	}

	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove peer file", "path", path, "error", err)
		}
	}, nil
}

// Peers lists the other live tarot processes that announced themselves for
// profileDir. Records left behind by processes that are gone are removed.
// Writes from peers are not coordinated with ours: the last writer wins.
func Peers(profileDir string) ([]Peer, error) {
	dir := filepath.Join(profileDir, constants.PeerDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	self := getpidFunc()
	var peers []Peer
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), constants.PeerFileSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		pid, err := readPeerFile(path)
		if err != nil {
			logger.Warn("Removing malformed peer file", "path", path, "error", err)
			os.Remove(path)
			continue
		}
		if pid == self {
			continue
		}

		process, err := findProcessFunc(pid)
		if err != nil || process == nil || !strings.HasPrefix(process.Executable(), constants.AppName) {
			os.Remove(path)
			continue
		}
		peers = append(peers, Peer{PID: pid, Executable: process.Executable()})
	}
	return peers, nil
}

func readPeerFile(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, errors.New("invalid process ID in peer file")
	}
	if pid < 1 {
		return 0, fmt.Errorf("process ID %d is out of range", pid)
	}
	return pid, nil
}
