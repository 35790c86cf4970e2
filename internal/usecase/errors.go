package usecase

import "errors"

var (
	ErrNoCurrentGameweek     = errors.New("no current gameweek")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
