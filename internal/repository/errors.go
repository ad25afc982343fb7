package repository

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Class buckets backend failures so callers can pick an error kind and message.
type Class int

const (
	ClassOther Class = iota
	ClassMissingRelation
	ClassUndefinedColumn
	ClassPrivilege
	ClassMissingCapability // e.g. no exec_sql function
	ClassConstraint
	ClassConnectivity
)

func (c Class) String() string {
	switch c {
	case ClassMissingRelation:
		return "missing_relation"
	case ClassUndefinedColumn:
		return "undefined_column"
	case ClassPrivilege:
		return "privilege"
	case ClassMissingCapability:
		return "missing_capability"
	case ClassConstraint:
		return "constraint"
	case ClassConnectivity:
		return "connectivity"
	default:
		return "other"
	}
}

// Classify inspects postgres, sqlite, PostgREST and network errors.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var restErr *RestError
	if errors.As(err, &restErr) {
		switch restErr.Code {
		case "PGRST205", "PGRST106":
			return ClassMissingRelation
		case "PGRST202":
			return ClassMissingCapability
		case "PGRST204":
			return ClassUndefinedColumn
		case "PGRST301", "PGRST302":
			return ClassPrivilege
		}
		if c := classifySQLState(restErr.Code); c != ClassOther {
			return c
		}
		switch restErr.Status {
		case 401, 403:
			return ClassPrivilege
		case 502, 503, 504:
			return ClassConnectivity
		}
		return ClassOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassConnectivity
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return ClassConnectivity
	}

	// modernc sqlite reports plain messages
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"):
		return ClassMissingRelation
	case strings.Contains(msg, "has no column named"), strings.Contains(msg, "no such column"):
		return ClassUndefinedColumn
	case strings.Contains(msg, "constraint failed"):
		return ClassConstraint
	case strings.Contains(msg, "readonly database"), strings.Contains(msg, "unable to open database"):
		return ClassConnectivity
	}
	return ClassOther
}

func classifySQLState(code string) Class {
	switch {
	case code == "42P01":
		return ClassMissingRelation
	case code == "42703":
		return ClassUndefinedColumn
	case code == "42501":
		return ClassPrivilege
	case code == "42883":
		return ClassMissingCapability
	case strings.HasPrefix(code, "23"):
		return ClassConstraint
	case strings.HasPrefix(code, "08"):
		return ClassConnectivity
	}
	return ClassOther
}

// backendMessage extracts the message worth showing for err.
func backendMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	var restErr *RestError
	if errors.As(err, &restErr) {
		return restErr.Message
	}
	return err.Error()
}
