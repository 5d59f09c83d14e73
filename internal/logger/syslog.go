//go:build !windows

// Package logger provides modifications to charmbracelet/log's default logger
// to be used in various files/packages.
package logger

import (
	"log/syslog"

	charmlog "github.com/charmbracelet/log"
)

// NewSyslog creates a charm logger that writes through the named syslog
// facility, capped at LOG_NOTICE severity per the engine's error-handling
// design (user-visible failures never exceed LOG_NOTICE over syslog).
func NewSyslog(prefix, facility string) (*charmlog.Logger, error) {
	priority, err := facilityPriority(facility)
	if err != nil {
		return nil, err
	}
	writer, err := syslog.New(priority, prefix)
	if err != nil {
		return nil, err
	}
	return charmlog.NewWithOptions(writer, charmlog.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       charmlog.TextFormatter,
		Level:           charmlog.GetLevel(),
	}), nil
}

// facilityPriority maps a facility name to its syslog.Priority, pinned at
// LOG_NOTICE severity.
func facilityPriority(facility string) (syslog.Priority, error) {
	facilities := map[string]syslog.Priority{
		"local0": syslog.LOG_LOCAL0,
		"local1": syslog.LOG_LOCAL1,
		"local2": syslog.LOG_LOCAL2,
		"local3": syslog.LOG_LOCAL3,
		"local4": syslog.LOG_LOCAL4,
		"local5": syslog.LOG_LOCAL5,
		"local6": syslog.LOG_LOCAL6,
		"local7": syslog.LOG_LOCAL7,
		"user":   syslog.LOG_USER,
		"daemon": syslog.LOG_DAEMON,
	}
	f, ok := facilities[facility]
	if !ok {
		f = syslog.LOG_LOCAL2 // DEF_SYSLOG_FACILITY
	}
	return f | syslog.LOG_NOTICE, nil
}
