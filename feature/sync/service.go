package sync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ankisync/core/anki"
	"ankisync/feature/document"

	"go.uber.org/zap"
)

// Service orchestrates the per-file pipeline: read, parse, plan, apply,
// rewrite.
type Service struct {
	client anki.Client
	logger *zap.Logger
}

// NewService creates a new sync service.
func NewService(client anki.Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// FileReport is the outcome of syncing a single file.
type FileReport struct {
	Path      string `json:"path"`
	Plan      *Plan  `json:"plan,omitempty"`
	Executed  bool   `json:"executed"`
	Rewritten bool   `json:"rewritten"`
	Error     string `json:"error,omitempty"`
}

// SyncFile runs the pipeline for one markdown file. In dry-run the report
// carries the plan and nothing is touched. The report is non-nil whenever
// planning succeeded, even if a later step failed.
func (s *Service) SyncFile(ctx context.Context, path string, opts Options) (*FileReport, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := document.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	plan, err := BuildPlan(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to plan %s: %w", path, err)
	}
	report := &FileReport{Path: path, Plan: plan}

	if opts.DryRun {
		return report, nil
	}

	if _, err := s.client.EnsureModel(ctx); err != nil {
		return report, err
	}

	newIDs, applyErr := Apply(ctx, s.client, s.logger, plan, opts, sourceURL(path))
	report.Executed = applyErr == nil

	// Ids gained so far are persisted even when the run was cut short, so
	// the created notes stay linked to their cards. The rewrite works on a
	// fresh read of the file: edits made while the run was in flight
	// survive, and a file whose structure drifted fails instead of being
	// overwritten.
	if newIDs > 0 {
		current, err := os.ReadFile(path)
		if err != nil {
			return report, fmt.Errorf("failed to re-read %s: %w", path, err)
		}
		out, changed, err := document.Rewrite(current, doc)
		if err != nil {
			return report, fmt.Errorf("failed to rewrite %s: %w", path, err)
		}
		if changed {
			if err := os.WriteFile(path, out, 0644); err != nil {
				return report, fmt.Errorf("failed to write %s: %w", path, err)
			}
			report.Rewritten = true
		}
	}
	if applyErr != nil {
		return report, applyErr
	}

	s.logger.Info("File synced",
		zap.String("path", path),
		zap.Int("cards", plan.Summary.TotalCards),
		zap.Int("created", plan.Summary.Creates),
		zap.Int("updated", plan.Summary.Updates),
		zap.Int("skipped", plan.Summary.Skips),
	)
	return report, nil
}

// SyncDir runs the pipeline for every markdown file under root, one file to
// completion before the next. A file that fails is reported and does not
// stop the others; only a canceled context aborts the walk.
func (s *Service) SyncDir(ctx context.Context, root string, opts Options) ([]*FileReport, error) {
	var reports []*FileReport
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		report, err := s.SyncFile(ctx, path, opts)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			if report == nil {
				report = &FileReport{Path: path}
			}
			report.Error = err.Error()
			s.logger.Warn("File failed", zap.String("path", path), zap.Error(err))
		}
		reports = append(reports, report)
		return nil
	})
	return reports, err
}

// SyncPath dispatches to SyncFile or SyncDir depending on what path names.
func (s *Service) SyncPath(ctx context.Context, path string, opts Options) ([]*FileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return s.SyncDir(ctx, path, opts)
	}

	report, err := s.SyncFile(ctx, path, opts)
	if err != nil {
		if report == nil {
			return nil, err
		}
		report.Error = err.Error()
		return []*FileReport{report}, err
	}
	return []*FileReport{report}, nil
}

// Ping checks the remote store and returns its protocol version.
func (s *Service) Ping(ctx context.Context) (int, error) {
	return s.client.Version(ctx)
}

// Decks returns the remote deck names in sorted order.
func (s *Service) Decks(ctx context.Context) ([]string, error) {
	names, err := s.client.DeckNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// sourceURL builds the obsidian link stored on each card. The path is kept
// raw: Obsidian resolves its own URI escaping.
func sourceURL(path string) string {
	return "obsidian://open?path=" + path
}
