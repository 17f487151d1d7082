// Package update checks GitHub releases for newer ffimath builds and replaces
// the running binary.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creativeprojects/go-selfupdate"
)

// Repository is the GitHub slug releases are published under.
const Repository = "pengelbrecht/ffimath"

// DevVersion is the version string of builds without release ldflags.
const DevVersion = "dev"

// ErrDevBuild is returned when the running binary has no release version to compare.
var ErrDevBuild = errors.New("development build cannot be self-updated")

// InstallMethod describes how the running binary was installed.
type InstallMethod int

const (
	InstallBinary InstallMethod = iota
	InstallHomebrew
	InstallGo
)

// Release is the newest published release.
type Release struct {
	Version string
	URL     string
}

// DetectInstallMethod inspects the executable path.
func DetectInstallMethod() InstallMethod {
	exe, err := os.Executable()
	if err != nil {
		return InstallBinary
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return installMethodFor(exe, os.Getenv("GOPATH"), os.Getenv("GOBIN"))
}

func installMethodFor(exe, gopath, gobin string) InstallMethod {
	slashed := filepath.ToSlash(exe)
	if strings.Contains(slashed, "/Cellar/") || strings.Contains(slashed, "/homebrew/") {
		return InstallHomebrew
	}
	dir := filepath.Dir(exe)
	if gobin != "" && dir == filepath.Clean(gobin) {
		return InstallGo
	}
	if gopath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			gopath = filepath.Join(home, "go")
		}
	}
	if gopath != "" && dir == filepath.Join(gopath, "bin") {
		return InstallGo
	}
	return InstallBinary
}

func detectLatest(ctx context.Context) (*selfupdate.Release, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return nil, fmt.Errorf("detect latest release: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no release found for %s", Repository)
	}
	return latest, nil
}

// CheckForUpdate reports the latest release and whether it is newer than current.
func CheckForUpdate(current string) (*Release, bool, error) {
	if current == DevVersion {
		return nil, false, ErrDevBuild
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	latest, err := detectLatest(ctx)
	if err != nil {
		return nil, false, err
	}
	release := &Release{Version: latest.Version(), URL: latest.URL}
	return release, !latest.LessOrEqual(current), nil
}

// Update downloads the latest release and replaces the running executable.
func Update(current string) error {
	if current == DevVersion {
		return ErrDevBuild
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	latest, err := detectLatest(ctx)
	if err != nil {
		return err
	}
	if latest.LessOrEqual(current) {
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("update to %s: %w", latest.Version(), err)
	}
	return nil
}
