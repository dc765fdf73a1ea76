package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/service/herd"
	"github.com/mamadbah2/herdcare/internal/service/reporting"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// HelpText lists the supported chat commands.
const HelpText = "Supported commands:\n" +
	"/due <tag> - vaccination schedule of a goat\n" +
	"/tags <tag> - status tags of a goat\n" +
	"/ready - does ready to mate\n" +
	"/overdue - overdue vaccinations\n" +
	"/digest - herd summary"

const maxListLines = 10

// HerdQueries defines the herd lookups the dispatcher answers from.
type HerdQueries interface {
	Today() time.Time
	GoatDueInfo(ctx context.Context, tag string) (herd.GoatDue, error)
	GoatTags(ctx context.Context, tag string) ([]models.Tag, error)
	ReadyDoes(ctx context.Context) ([]care.ReadyDoe, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	OverdueReport(ctx context.Context) ([]reporting.OverdueRow, error)
	Digest(ctx context.Context) (string, error)
}

// Dispatcher executes parsed commands and renders the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	herd      HerdQueries
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(herdQueries HerdQueries, reportingAdapter ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		herd:      herdQueries,
		reporting: reportingAdapter,
		logger:    logger,
	}
}

// HandleCommand answers one command. Unknown commands get the help text; a
// goat tag that does not exist is answered rather than returned as an error.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	var (
		reply string
		err   error
	)
	switch cmd.Type {
	case models.CommandDue:
		reply, err = s.withGoat(cmd, func(tag string) (string, error) { return s.dueReply(ctx, tag) })
	case models.CommandTags:
		reply, err = s.withGoat(cmd, func(tag string) (string, error) { return s.tagsReply(ctx, tag) })
	case models.CommandReady:
		reply, err = s.readyReply(ctx)
	case models.CommandOverdue:
		reply, err = s.overdueReply(ctx)
	case models.CommandDigest:
		reply, err = s.reporting.Digest(ctx)
	default:
		return HelpText, nil
	}
	if err != nil {
		return "", fmt.Errorf("%s command: %w", cmd.Type, err)
	}
	return reply, nil
}

func (s *Service) withGoat(cmd models.Command, fn func(tag string) (string, error)) (string, error) {
	if len(cmd.Args) == 0 {
		return "", fmt.Errorf("%w: usage /%s <tag>", ErrInvalidArguments, cmd.Type)
	}
	tag := cmd.Args[0]
	reply, err := fn(tag)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("Goat %s not found.", tag), nil
	}
	return reply, err
}

func (s *Service) dueReply(ctx context.Context, tag string) (string, error) {
	due, err := s.herd.GoatDueInfo(ctx, tag)
	if err != nil {
		return "", err
	}
	if len(due.Due) == 0 {
		return fmt.Sprintf("%s has no vaccinations due yet.", due.Goat.Tag), nil
	}

	today := s.herd.Today()
	lines := []string{fmt.Sprintf("%s vaccinations:", due.Goat.Tag)}
	for _, info := range due.Due {
		line := fmt.Sprintf("- %s next due %s", info.Vaccine.Name, dates.Format(info.NextDue))
		if info.Scheduled {
			line += " (scheduled)"
		}
		if n := info.DaysOverdue(today); n > 0 {
			line += fmt.Sprintf(", overdue by %d days", n)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) tagsReply(ctx context.Context, tag string) (string, error) {
	tags, err := s.herd.GoatTags(ctx, tag)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return fmt.Sprintf("%s: no tags", tag), nil
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return fmt.Sprintf("%s: %s", tag, strings.Join(names, ", ")), nil
}

func (s *Service) readyReply(ctx context.Context) (string, error) {
	does, err := s.herd.ReadyDoes(ctx)
	if err != nil {
		return "", err
	}
	if len(does) == 0 {
		return "No does ready to mate.", nil
	}

	lines := []string{fmt.Sprintf("Ready does (%d):", len(does))}
	for i, d := range does {
		if i == maxListLines {
			lines = append(lines, fmt.Sprintf("... and %d more", len(does)-i))
			break
		}
		switch {
		case d.DaysSince != nil:
			lines = append(lines, fmt.Sprintf("- %s (%d days since mating)", d.Doe.Tag, *d.DaysSince))
		case d.Breeding != nil:
			lines = append(lines, fmt.Sprintf("- %s (mating end not recorded)", d.Doe.Tag))
		default:
			lines = append(lines, fmt.Sprintf("- %s (never mated)", d.Doe.Tag))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) overdueReply(ctx context.Context) (string, error) {
	rows, err := s.reporting.OverdueReport(ctx)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No overdue vaccinations.", nil
	}

	lines := []string{fmt.Sprintf("Overdue vaccinations (%d):", len(rows))}
	for i, r := range rows {
		if i == maxListLines {
			lines = append(lines, fmt.Sprintf("... and %d more", len(rows)-i))
			break
		}
		lines = append(lines, fmt.Sprintf("- %s %s due %s (%d days)", r.GoatTag, r.Vaccine, dates.Format(r.NextDue), r.DaysOverdue))
	}
	return strings.Join(lines, "\n"), nil
}
