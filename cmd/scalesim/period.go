package main

import (
	"time"

	"github.com/bft-labs/scalesim/internal/cliconfig"
)

// periodValue is a pflag.Value that accepts bare seconds as well as Go
// durations, matching the config file and environment.
type periodValue struct {
	d *time.Duration
}

func (v periodValue) String() string {
	if v.d == nil {
		return ""
	}
	return v.d.String()
}

func (v periodValue) Set(s string) error {
	d, err := cliconfig.ParsePeriodicity(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (periodValue) Type() string { return "duration" }
