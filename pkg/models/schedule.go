package models

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger parameters that control when an execution starts.
const (
	// ParamCronDefinition schedules recurring executions.
	// Uses standard 5-field cron format (minute hour day month weekday)
	ParamCronDefinition = "cronDefinition"

	// ParamDelayed postpones a single execution by a number of seconds.
	ParamDelayed = "delayed"
)

var (
	// ErrInvalidSchedule is returned when a cron definition is not accepted.
	ErrInvalidSchedule = errors.New("invalid cron definition")

	// ErrInvalidDelay is returned when a delay is not a non-negative integer.
	ErrInvalidDelay = errors.New("invalid delay")
)

var (
	// Each field is "*", a literal, or "*/step".
	cronFieldPattern = regexp.MustCompile(`^(\*|\d+|\*/\d+)$`)
	delayPattern     = regexp.MustCompile(`^\d+$`)

	cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
)

// ExecutionSchedule is the scheduling intent carried by trigger parameters.
// The downstream scheduler acts on it; here it is only validated.
type ExecutionSchedule struct {
	CronDefinition string
	Delay          time.Duration

	cron cron.Schedule
}

// ParseSchedule reads the scheduling parameters. A nil schedule is returned
// when neither parameter is present.
func ParseSchedule(parameters map[string]string) (*ExecutionSchedule, error) {
	cronDefinition, hasCron := parameters[ParamCronDefinition]
	delayed, hasDelay := parameters[ParamDelayed]

	if !hasCron && !hasDelay {
		return nil, nil
	}

	schedule := &ExecutionSchedule{}

	if hasCron {
		parsed, err := ParseCronDefinition(cronDefinition)
		if err != nil {
			return nil, err
		}

		schedule.CronDefinition = cronDefinition
		schedule.cron = parsed
	}

	if hasDelay {
		delay, err := ParseDelay(delayed)
		if err != nil {
			return nil, err
		}

		schedule.Delay = delay
	}

	return schedule, nil
}

// ParseCronDefinition validates a 5-field cron expression. Ranges, lists and
// named values are not part of the accepted grammar.
func ParseCronDefinition(expression string) (cron.Schedule, error) {
	fields := strings.Fields(expression)
	if len(fields) != 5 {
		return nil, ErrInvalidSchedule
	}

	for _, field := range fields {
		if !cronFieldPattern.MatchString(field) {
			return nil, ErrInvalidSchedule
		}
	}

	// Bounds (minute 0-59 ... weekday 0-6) and positive steps are enforced by the parser
	schedule, err := cronParser.Parse(strings.Join(fields, " "))
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}

	return schedule, nil
}

// MaxDelay is the longest delay a schedule carries, about 292 years.
// Larger delays are accepted and clamped to it.
const MaxDelay = time.Duration(math.MaxInt64/int64(time.Second)) * time.Second

// ParseDelay validates a delay given in whole seconds.
func ParseDelay(value string) (time.Duration, error) {
	if !delayPattern.MatchString(value) {
		return 0, ErrInvalidDelay
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if errors.Is(err, strconv.ErrRange) || seconds > int64(MaxDelay/time.Second) {
		return MaxDelay, nil
	}

	if err != nil {
		return 0, errors.Join(ErrInvalidDelay, err)
	}

	return time.Duration(seconds) * time.Second, nil
}

// NextDueAt returns the first time the execution is due after reference.
func (s *ExecutionSchedule) NextDueAt(reference time.Time) time.Time {
	if s.cron != nil {
		return s.cron.Next(reference.Add(s.Delay))
	}

	return reference.Add(s.Delay)
}
