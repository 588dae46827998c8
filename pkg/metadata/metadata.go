// Package metadata provides the signature block appended to normalized bibliography files.
//
// The block is a run of %-comment lines placed after the last record:
//
//	% BIBNORM_METADATA_START
//	% RUN_ID: 6f1c...
//	% ACCEPTED: 12
//	% LAST_MODIFY: 2026-01-02T15:04:05Z
//	% HASH: 9a0b...
//	% BIBNORM_METADATA_END
//
// HASH is the SHA-256 of every byte that precedes the block.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "% BIBNORM_METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "% BIBNORM_METADATA_END"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
	ErrCountMismatch   = errors.New("accepted count mismatch")
)

// Metadata contains the run information stamped into an output file.
type Metadata struct {
	LastModify time.Time
	RunID      string
	Hash       string
	Accepted   int
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?m)^% BIBNORM_METADATA_START\n((?:%.*\n)*?)% BIBNORM_METADATA_END\n?`)

// Render formats the block, terminated by a newline.
func (m *Metadata) Render() string {
	var sb strings.Builder

	sb.WriteString(TagStart + "\n")
	fmt.Fprintf(&sb, "%% RUN_ID: %s\n", m.RunID)
	fmt.Fprintf(&sb, "%% ACCEPTED: %d\n", m.Accepted)
	fmt.Fprintf(&sb, "%% LAST_MODIFY: %s\n", m.LastModify.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "%% HASH: %s\n", m.Hash)
	sb.WriteString(TagEnd + "\n")

	return sb.String()
}

// Extract splits content into its metadata and the signed content that precedes the block.
// Without a block it returns nil and the content unchanged.
func Extract(content string) (*Metadata, string) {
	loc := metadataRegex.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, content
	}

	meta := &Metadata{}

	for _, line := range strings.Split(content[loc[2]:loc[3]], "\n") {
		key, val, ok := strings.Cut(strings.TrimPrefix(line, "%"), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "RUN_ID":
			meta.RunID = val
		case "ACCEPTED":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Accepted = n
			}
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, content[:loc[0]]
}

// CalculateHash computes the SHA-256 hash of signed content.
func CalculateHash(content string) string {
	sum := sha256.Sum256([]byte(content))

	return hex.EncodeToString(sum[:])
}

// Sign drops any existing block and appends a fresh one.
func Sign(content, runID string, accepted int) string {
	_, clean := Extract(content)

	meta := &Metadata{
		RunID:      runID,
		Accepted:   accepted,
		LastModify: time.Now(),
		Hash:       CalculateHash(clean),
	}

	return clean + meta.Render()
}

// Verify checks that the content matches the hash in its metadata.
func Verify(content string) (*Metadata, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return nil, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return meta, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return meta, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return meta, nil
}

// Signer hashes records as they are streamed to the output.
type Signer struct {
	h hash.Hash
	n int64
}

// NewSigner creates an empty signer.
func NewSigner() *Signer {
	return &Signer{h: sha256.New()}
}

// Write adds p to the running hash. It never fails.
func (s *Signer) Write(p []byte) (int, error) {
	s.n += int64(len(p))

	return s.h.Write(p)
}

// Written returns the number of bytes hashed so far.
func (s *Signer) Written() int64 {
	return s.n
}

// Metadata returns the block describing everything written so far.
func (s *Signer) Metadata(runID string, accepted int, now time.Time) *Metadata {
	return &Metadata{
		RunID:      runID,
		Accepted:   accepted,
		LastModify: now,
		Hash:       hex.EncodeToString(s.h.Sum(nil)),
	}
}
