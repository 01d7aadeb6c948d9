// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

// Package sliceedit extends the functionalities of rsc.io/edit to
// implement eficient buffered editing of byte slices.
// All edits are expressed as offsets in the original data, so a replacement
// text is never searched again by a later edit.
package sliceedit

import (
	"bytes"
	"sort"

	"rsc.io/edit"
)

// A Buffer is a queue of edits to apply to a given byte slice.
type Buffer struct {
	ed  *edit.Buffer
	buf []byte

	// taken records the edited ranges, because rsc.io/edit panics on overlaps
	taken []span
}

type span struct {
	start, end int
}

// NewBuffer returns a new buffer to accumulate changes to an initial data slice.
// The returned buffer maintains a reference to the data, so the caller must ensure
// the data is not modified until after the Buffer is done being used.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{
		buf: buf,
		ed:  edit.NewBuffer(buf),
	}
}

// FindAll finds all non-overlapping instances of item in buf.
func FindAll(buf []byte, item string) []int {
	found := []int{}

	if len(item) == 0 {
		return found
	}

	realOffset := 0

	for {
		i := bytes.Index(buf, []byte(item))
		if i == -1 {
			return found
		}
		found = append(found, i+realOffset)
		buf = buf[i+len(item):]
		realOffset = realOffset + i + len(item)
	}
}

// overlaps reports if [start, end) intersects a range already edited
func (b *Buffer) overlaps(start, end int) bool {
	i := sort.Search(len(b.taken), func(i int) bool { return b.taken[i].end > start })
	return i < len(b.taken) && b.taken[i].start < end
}

func (b *Buffer) take(start, end int) {
	i := sort.Search(len(b.taken), func(i int) bool { return b.taken[i].start >= start })
	b.taken = append(b.taken, span{})
	copy(b.taken[i+1:], b.taken[i:])
	b.taken[i] = span{start, end}
}

// ReplaceAllString queues the replacement of every instance of old by new.
// Instances overlapping a previously queued edit are left alone.
// It returns the number of replacements queued.
func (b *Buffer) ReplaceAllString(old string, new string) int {
	count := 0
	for _, hit := range FindAll(b.buf, old) {
		if b.overlaps(hit, hit+len(old)) {
			continue
		}
		b.take(hit, hit+len(old))
		b.ed.Replace(hit, hit+len(old), new)
		count++
	}
	return count
}

// ReplacePairs queues replacements given as old, new pairs, like strings.NewReplacer.
// It returns the number of replacements queued for each old string.
func (b *Buffer) ReplacePairs(oldnew ...string) map[string]int {
	if len(oldnew)%2 == 1 {
		panic("sliceedit.ReplacePairs: odd argument count")
	}

	counts := make(map[string]int, len(oldnew)/2)
	for i := 0; i < len(oldnew); i += 2 {
		counts[oldnew[i]] += b.ReplaceAllString(oldnew[i], oldnew[i+1])
	}
	return counts
}

// Bytes returns a new byte slice containing the original data
// with the queued edits applied.
func (b *Buffer) Bytes() []byte {
	return b.ed.Bytes()
}

// String returns a string containing the original data
// with the queued edits applied.
func (b *Buffer) String() string {
	return b.ed.String()
}
