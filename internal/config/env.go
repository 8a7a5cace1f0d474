package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// The env* helpers return d when k is unset or empty.  A value that does not
// parse is logged and also falls back to d.

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	switch strings.ToLower(v) {
	case "":
		return d
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	invalid(k, v, d)
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		invalid(k, v, d)
		return d
	}
	return n
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		invalid(k, v, d)
		return d
	}
	return dur
}

func invalid(k, v string, d any) {
	logrus.WithFields(logrus.Fields{"var": k, "value": v, "default": d}).Warn("Ignoring invalid environment value")
}
