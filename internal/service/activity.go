package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const DefaultCommitLimit = 5

// * GitHubClient is the slice of the GitHub client the aggregator needs
type GitHubClient interface {
	FetchAllRepositories(ctx context.Context, username string) ([]models.Repository, error)
	LatestCommits(ctx context.Context, repo models.Repository) ([]models.CommitRecord, error)
}

type ActivityService struct {
	githubClient GitHubClient
	username     string
	limit        int
	concurrency  int
}

func NewActivityService(githubClient GitHubClient, username string, limit, concurrency int) *ActivityService {
	if limit <= 0 {
		limit = DefaultCommitLimit
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ActivityService{
		githubClient: githubClient,
		username:     username,
		limit:        limit,
		concurrency:  concurrency,
	}
}

func (s *ActivityService) Username() string {
	return s.username
}

// RecentActivity walks the user's repositories and returns their most recent
// commits, newest first. An empty result is reported as ACTIVITY_UNAVAILABLE.
func (s *ActivityService) RecentActivity(ctx context.Context) ([]models.CommitRecord, error) {
	repos, err := s.githubClient.FetchAllRepositories(ctx, s.username)
	if err != nil {
		return nil, errors.New(
			errors.RefActivityUnavailable,
			"GitHub activity is unavailable",
			"Repositories could not be listed",
			fmt.Errorf("failed to list repositories: %w", err),
			errors.LevelWarning,
		).WithStatus(http.StatusServiceUnavailable)
	}

	commits := s.CollectRecentCommits(ctx, repos, s.limit)
	if len(commits) == 0 {
		return nil, errors.New(
			errors.RefActivityUnavailable,
			"GitHub activity is unavailable",
			fmt.Sprintf("No dated commits found across %d repositories", len(repos)),
			nil,
			errors.LevelWarning,
		).WithStatus(http.StatusServiceUnavailable)
	}

	logger.Info("Collected %d recent commits for %s", len(commits), s.username)
	return commits, nil
}

// CollectRecentCommits looks up the latest commit of every repository and
// returns the newest limit of them. A failed lookup only drops that repository.
func (s *ActivityService) CollectRecentCommits(ctx context.Context, repos []models.Repository, limit int) []models.CommitRecord {
	perRepo := make([][]models.CommitRecord, len(repos))

	lookup := func(i int) {
		commits, err := s.githubClient.LatestCommits(ctx, repos[i])
		if err != nil {
			logger.Warn("skipping %s: %v", repos[i].FullName, err)
			return
		}
		perRepo[i] = commits
	}

	if s.concurrency <= 1 {
		for i := range repos {
			lookup(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.concurrency)
		for i := range repos {
			i := i
			g.Go(func() error {
				lookup(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	var flattened []models.CommitRecord
	for _, commits := range perRepo {
		flattened = append(flattened, commits...)
	}

	return RankCommits(flattened, limit)
}

// RankCommits drops undated records, orders the rest newest first and keeps
// at most limit. Equal dates keep their input order.
func RankCommits(records []models.CommitRecord, limit int) []models.CommitRecord {
	dated := make([]models.CommitRecord, 0, len(records))
	for _, record := range records {
		if record.AuthorDate != nil {
			dated = append(dated, record)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].AuthorDate.After(*dated[j].AuthorDate)
	})

	if limit >= 0 && len(dated) > limit {
		dated = dated[:limit]
	}
	return dated
}
