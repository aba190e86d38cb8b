package track

import (
	"io"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
)

type sourceKind int

const (
	sourceIdentity sourceKind = iota
	sourceStormID
	sourceName
	sourceTable
	sourceStream
	sourceFile
)

// Source is where a Track takes its fixes from. Build one with Identity,
// StormIdentity, Table or Stream.
type Source struct {
	kind     sourceKind
	identity string
	name     string
	year     int
	table    domain.RecordTable
	stream   io.Reader
	forecast bool // shift a-deck rows by their forecast hour
}

// Identity is an existing file path, a storm id such as "AL112017", or a
// storm name followed by its year such as "irma2017".
func Identity(s string) Source {
	return Source{kind: sourceIdentity, identity: s}
}

// StormIdentity is a storm id or a storm name followed by its year. Unlike
// Identity it never reads a local file, so it is safe for untrusted input.
func StormIdentity(s string) Source {
	return Source{kind: sourceStormID, identity: s}
}

// Table is an already decoded set of fixes. The track takes a copy.
func Table(t domain.RecordTable) Source {
	return Source{kind: sourceTable, table: t}
}

// Stream is ATCF text, optionally gzipped, read once at construction.
func Stream(r io.Reader) Source {
	return Source{kind: sourceStream, stream: r}
}
