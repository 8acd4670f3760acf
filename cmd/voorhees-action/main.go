// Command voorhees-action installs the voorhees release matching the
// requested version and runs it on a `go list -json` dump.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/action"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/binary"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/config"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/platform"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/release"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/runner"
	"github.com/ZebulonRouseFrantzich/voorhees-action/internal/version"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("voorhees-action %s\n", Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	act := action.New(os.Stdout, os.Getenv)

	s := &step{
		action:   act,
		getenv:   os.Getenv,
		detector: platform.NewDetector(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		verbose:  os.Getenv("RUNNER_DEBUG") == "1",
	}
	if err := s.run(ctx); err != nil {
		act.SetFailed(failureMessage(err, s.verbose))
	}
	stop()

	os.Exit(act.ExitCode())
}

// step is one execution of the action.
type step struct {
	action   *action.Action
	getenv   func(string) string
	detector platform.Detector

	// httpClient and tempDir replace the defaults when set.
	httpClient *http.Client
	tempDir    string

	stdout  io.Writer
	stderr  io.Writer
	verbose bool
}

func (s *step) run(ctx context.Context) error {
	logger := s.action.Logger()

	inputs, err := config.Load(ctx, s.getenv, s.detector, logger)
	if err != nil {
		return err
	}
	if err := inputs.CheckInputFile(); err != nil {
		return err
	}

	constraint, err := version.NormalizeConstraint(inputs.Version)
	if err != nil {
		return &failure{
			msg: fmt.Sprintf("%s is not a valid semver version number. expected one of x, x.y, or x.y.z", inputs.Version),
			err: err,
		}
	}
	logger.Debug("version constraint", "request", inputs.Version, "range", constraint.String())

	clientOpts := []release.Option{
		release.WithBaseURL(inputs.APIBaseURL),
		release.WithToken(inputs.Token),
		release.WithUserAgent(release.UserAgent(Version)),
	}
	if s.httpClient != nil {
		clientOpts = append(clientOpts, release.WithHTTPClient(s.httpClient))
	}
	releases, err := release.NewClient(clientOpts...).ListReleases(ctx, inputs.Owner, inputs.Repo)
	if err != nil {
		return err
	}
	if inputs.SortReleases {
		releases = version.SortNewestFirst(releases)
	}

	v, err := version.SelectRelease(releases, constraint)
	if err != nil {
		if errors.Is(err, version.ErrNoMatchingRelease) {
			return &failure{msg: "no version found for " + inputs.Version, err: err}
		}
		return err
	}
	logger.Info("resolved voorhees version", "request", inputs.Version, "version", v.String())

	host, err := platform.Override(s.detector, inputs.Platform, inputs.Arch).Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}
	info, err := binary.BuildDownloadURL(inputs.ReleaseBaseURL, v, host.OS, host.Arch)
	if err != nil {
		return err
	}

	installer, err := binary.NewInstaller(binary.Config{
		WorkDir:    inputs.WorkDir,
		TempDir:    s.tempDir,
		Downloader: s.downloader(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	result, err := installer.Install(ctx, info, binary.InstallOptions{
		VerifyChecksum: inputs.VerifyChecksum,
		SigningKey:     inputs.SigningKey,
	})
	if err != nil {
		return err
	}
	logger.Info("installed voorhees",
		"version", result.Version,
		"verified", result.Verified.String(),
		"download_time", result.DownloadTime.Round(time.Millisecond))

	return s.action.Group("Run voorhees", func() error {
		return runner.Run(ctx, runner.Options{
			Path:      result.Path,
			Args:      inputs.Args,
			Dir:       inputs.WorkDir,
			InputFile: inputs.GoListFile,
			Stdout:    s.stdout,
			Stderr:    s.stderr,
		})
	})
}

func (s *step) downloader() *binary.Downloader {
	opts := []binary.DownloaderOption{
		binary.WithUserAgent(release.UserAgent(Version)),
	}
	if s.httpClient != nil {
		opts = append(opts, binary.WithHTTPClient(s.httpClient))
	}
	if s.tempDir != "" {
		opts = append(opts, binary.WithTempDir(s.tempDir))
	}
	return binary.NewDownloader(opts...)
}

// failure replaces the message of err for the step summary.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

// failureMessage returns the text reported when the step fails.
func failureMessage(err error, verbose bool) string {
	var parseErr *config.ParseError
	if errors.As(err, &parseErr) {
		return config.FormatError(err, verbose)
	}
	return err.Error()
}
