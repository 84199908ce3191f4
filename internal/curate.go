package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvesta/lem/pkg/curation"
)

// ParseScoreValues splits dimension=value arguments.
func ParseScoreValues(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		dim, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(dim) == "" {
			return nil, fmt.Errorf("invalid score %q, expected dimension=value", arg)
		}
		values[strings.TrimSpace(dim)] = strings.TrimSpace(value)
	}
	return values, nil
}

// DoScore validates values against the score definitions and records them
// on the exploit.
func DoScore(ctx context.Context, a *App, t curation.Target, values map[string]string) error {
	cpe, err := a.ResolveCPE(ctx, t.CPE)
	if err != nil {
		return err
	}
	t.CPE = cpe

	s := &curation.Scorer{Store: a.Store, Validator: a.Scores}
	return s.SetScores(t, values)
}

func (a *App) stager() *curation.Stager {
	return &curation.Stager{
		Store:       a.Store,
		PayloadRoot: a.Cfg.ExploitDB.Path,
		Copier:      curation.FileCopier{},
		Logger:      a.Logger,
	}
}

// StageField names the staging data set by DoSetStaging.
type StageField string

const (
	StageCommand  StageField = "command"
	StagePackages StageField = "packages"
	StageServices StageField = "services"
	StageSelinux  StageField = "selinux"
)

// DoSetStaging records one staging field of an exploit.
func DoSetStaging(ctx context.Context, a *App, t curation.Target, field StageField, values []string) error {
	cpe, err := a.ResolveCPE(ctx, t.CPE)
	if err != nil {
		return err
	}
	t.CPE = cpe

	s := a.stager()
	switch field {
	case StageCommand:
		return s.SetStageCommand(t, strings.Join(values, " "))
	case StagePackages:
		return s.AddPackages(t, values...)
	case StageServices:
		return s.AddServices(t, values...)
	case StageSelinux:
		if len(values) != 1 {
			return fmt.Errorf("expected exactly one selinux mode")
		}
		return s.SetSelinux(t, values[0])
	default:
		return fmt.Errorf("unknown staging field %q", field)
	}
}

// DoShowStaging returns the staging data of an exploit on cpe.
func DoShowStaging(ctx context.Context, a *App, id, cpe string) (*curation.StagingInfo, string, string, error) {
	cpe, err := a.ResolveCPE(ctx, cpe)
	if err != nil {
		return nil, "", "", err
	}

	info, cve, err := a.stager().Info(id, cpe)
	return info, cve, cpe, err
}

// DoStage copies the payload of an exploit to destination.
func DoStage(ctx context.Context, a *App, id, destination, cpe string) (*curation.StageResult, error) {
	cpe, err := a.ResolveCPE(ctx, cpe)
	if err != nil {
		return nil, err
	}

	return a.stager().Stage(ctx, id, destination, cpe)
}
