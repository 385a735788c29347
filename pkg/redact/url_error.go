// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact strips credentials from values that end up in logs and
// error messages.
package redact

import (
	"errors"
	"net/url"
	"strings"
)

const placeholder = "REDACTED"

var sensitiveParams = map[string]struct{}{
	"apikey":   {},
	"api_key":  {},
	"key":      {},
	"passkey":  {},
	"password": {},
	"secret":   {},
	"token":    {},
}

// URL returns raw with the userinfo password and sensitive query values
// replaced. Unparseable input is returned unchanged.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), placeholder)
		}
	}

	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for k := range q {
			if _, ok := sensitiveParams[strings.ToLower(k)]; ok {
				q.Set(k, placeholder)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	return u.String()
}

// URLError redacts the URL of a *url.Error anywhere in err's chain. The
// result still unwraps to a *url.Error; other errors are returned as is.
func URLError(err error) error {
	var urlErr *url.Error
	if err == nil || !errors.As(err, &urlErr) {
		return err
	}

	redacted := &url.Error{Op: urlErr.Op, URL: URL(urlErr.URL), Err: urlErr.Err}
	if urlErr == err {
		return redacted
	}

	return &redactedError{
		msg: strings.ReplaceAll(err.Error(), urlErr.URL, redacted.URL),
		err: redacted,
	}
}

type redactedError struct {
	msg string
	err *url.Error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }
