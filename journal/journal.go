// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package journal records ledger operations in a sqlite database for
// offline inspection and the read API. The journal is an audit trail,
// not a source of truth; the kv store alone decides ledger state.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
)

const entryTableSchema = `
create table if not exists entry (
	seq integer primary key autoincrement,
	time integer not null,
	op text not null,
	actor char(42) not null,
	subject text not null,
	amount text not null default '',
	detail text not null default ''
);

create index if not exists entryOpIndex on entry(op);
create index if not exists entryActorIndex on entry(actor);
`

// Entry is one journaled operation.
type Entry struct {
	Seq     int64
	Time    uint64
	Op      string
	Actor   meridian.Address
	Subject string
	Amount  string
	Detail  string
}

// Order of query results by sequence.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Filter narrows a journal query. Zero fields match everything.
type Filter struct {
	Op     string
	Actor  *meridian.Address
	Order  Order // default asc
	Offset uint64
	Limit  uint64
}

// Journal is a sqlite backed operation log.
type Journal struct {
	path string
	db   *sql.DB
}

// New creates or opens the journal at path.
func New(path string) (journal *Journal, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if journal == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(entryTableSchema); err != nil {
		return nil, err
	}
	return &Journal{path, db}, nil
}

// NewMem creates a journal in ram.
func NewMem() (*Journal, error) {
	return New(":memory:")
}

// Close closes the journal.
func (j *Journal) Close() {
	j.db.Close()
}

func (j *Journal) Path() string {
	return j.path
}

// Record appends one entry.
func (j *Journal) Record(ctx context.Context, entry *Entry) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO entry(time, op, actor, subject, amount, detail) VALUES(?,?,?,?,?,?)",
		entry.Time, entry.Op, entry.Actor.String(), entry.Subject, entry.Amount, entry.Detail,
	)
	return errors.Wrap(err, "record journal entry")
}

// Filter queries entries matching the filter.
func (j *Journal) Filter(ctx context.Context, filter *Filter) ([]*Entry, error) {
	stmt := "SELECT seq, time, op, actor, subject, amount, detail FROM entry WHERE 1"
	var args []interface{}
	if filter != nil {
		if filter.Op != "" {
			stmt += " AND op = ?"
			args = append(args, filter.Op)
		}
		if filter.Actor != nil {
			stmt += " AND actor = ?"
			args = append(args, filter.Actor.String())
		}
	}
	if filter != nil && filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter != nil && filter.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %v OFFSET %v", filter.Limit, filter.Offset)
	}

	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry Entry
			actor string
		)
		if err := rows.Scan(&entry.Seq, &entry.Time, &entry.Op, &actor, &entry.Subject, &entry.Amount, &entry.Detail); err != nil {
			return nil, errors.Wrap(err, "scan journal entry")
		}
		addr, err := meridian.ParseAddress(actor)
		if err != nil {
			return nil, errors.Wrap(err, "parse journal actor")
		}
		entry.Actor = addr
		entries = append(entries, &entry)
	}
	return entries, errors.Wrap(rows.Err(), "iterate journal")
}
