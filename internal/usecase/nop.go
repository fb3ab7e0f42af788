package usecase

import "time"

type nopMetrics struct{}

func (nopMetrics) RecordUpstream(string, time.Duration, error) {}
func (nopMetrics) RecordCacheLookup(string, bool)              {}
func (nopMetrics) RecordBootstrap(string)                      {}
func (nopMetrics) RecordBuild(string, time.Duration)           {}
func (nopMetrics) RecordError(string)                          {}
