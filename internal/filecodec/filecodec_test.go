/*
 * x584 - File codec tests.
 *
 * Copyright 2024, Richard Cornwell
 */

package filecodec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"

	"github.com/rcornwell/x584/internal/catalog"
	"github.com/rcornwell/x584/internal/driver"
)

func sampleDoc() *Document {
	doc := &Document{}
	doc.Rows[0] = driver.Row{Code: 60, Control: "IF A3 THEN 5 ELSE 6", Comment: "add DI into WR"}
	doc.Rows[1] = driver.Row{Code: 87, Comment: "SLL(WR,DI) step"}
	return doc
}

func TestX584RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	doc := sampleDoc()

	assert.NoError(t, WriteX584(&buf, doc))

	got, err := ReadX584(&buf)
	assert.NoError(t, err)
	assert.Equal(t, doc.Rows[0].Code, got.Rows[0].Code)
	assert.Equal(t, doc.Rows[0].Control, got.Rows[0].Control)
	assert.Equal(t, doc.Rows[0].Comment, got.Rows[0].Comment)
	assert.Equal(t, doc.Rows[1].Code, got.Rows[1].Code)
	assert.Equal(t, doc.Rows[1].Comment, got.Rows[1].Comment)
}

func TestX584RoundTripFullUnicode(t *testing.T) {
	var buf bytes.Buffer
	doc := &Document{}
	doc.Rows[0] = driver.Row{
		Code:    60,
		Control: "IF A3 THEN 5 ELSE 6",
		Comment: "full Unicode annotation, emoji-safe: 🎛 and CP1251-hostile text",
	}

	assert.NoError(t, WriteX584(&buf, doc))

	got, err := ReadX584(&buf)
	assert.NoError(t, err)
	assert.Equal(t, doc.Rows[0].Control, got.Rows[0].Control)
	assert.Equal(t, doc.Rows[0].Comment, got.Rows[0].Comment)
}

func TestX584ReadsPreV2FileWithSharedAnnotation(t *testing.T) {
	// Hand-build a legacy-only stream (code + 1-byte-length annotation
	// per row, no V2 trailer), simulating a file written by tooling that
	// predates it.
	var buf bytes.Buffer
	assert.NoError(t, binary.Write(&buf, binary.LittleEndian, SignatureX584))
	assert.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(60)))
	assert.NoError(t, writeLPString8(&buf, "legacy note"))
	for i := 1; i < driver.StoreSize; i++ {
		assert.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(0)))
		assert.NoError(t, writeLPString8(&buf, ""))
	}

	got, err := ReadX584(&buf)
	assert.NoError(t, err)
	assert.Equal(t, "legacy note", got.Rows[0].Control)
	assert.Equal(t, got.Rows[0].Control, got.Rows[0].Comment, "without a V2 trailer both fields share the legacy text")
}

func TestBadSignatureRejected(t *testing.T) {
	buf := bytes.NewBufferString("not an x584 file at all")
	_, err := ReadX584(buf)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestPRJRoundTripThroughReCode(t *testing.T) {
	var buf bytes.Buffer
	doc := &Document{}
	// catalog.Table[catalog.ReCode[0]] and [1] are both reachable through
	// the legacy table, unlike an arbitrary catalog opcode. The legacy
	// format's single carry-bit column has no "used" vs "unused" state,
	// so a row read back from it always carries BitCarryUsed.
	doc.Rows[0] = driver.Row{
		Code:    catalog.Table[catalog.ReCode[0]].Value | driver.BitCarryUsed,
		Comment: "first legacy row",
	}
	doc.Rows[1] = driver.Row{
		Code:    catalog.Table[catalog.ReCode[1]].Value | driver.BitCarryUsed,
		Comment: "second legacy row",
	}

	assert.NoError(t, WritePRJ(&buf, doc))

	got, err := ReadPRJ(&buf)
	assert.NoError(t, err)
	assert.Equal(t, doc.Rows[0].Code, got.Rows[0].Code)
	assert.Equal(t, doc.Rows[1].Code, got.Rows[1].Code)
}

func TestPRJPreservesCarryAttribute(t *testing.T) {
	var buf bytes.Buffer
	doc := &Document{}
	doc.Rows[0] = driver.Row{
		Code:    catalog.Table[catalog.ReCode[0]].Value | driver.BitCarryUsed | driver.BitCarryValue,
		Comment: "carry forced true",
	}

	assert.NoError(t, WritePRJ(&buf, doc))

	got, err := ReadPRJ(&buf)
	assert.NoError(t, err)
	assert.True(t, got.Rows[0].CarryUsed())
	assert.True(t, got.Rows[0].CarryValue())
}

func TestPRJCanonicalizesFlagSynonyms(t *testing.T) {
	doc := &Document{}
	doc.Rows[0] = driver.Row{Code: 60, Control: "IF XWR0 THEN 1"}

	var buf bytes.Buffer
	assert.NoError(t, WritePRJ(&buf, doc))

	got, err := ReadPRJ(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	assert.Contains(t, got.Rows[0].Comment, "РРР0")
}

func TestPRJHeaderLinesAreLiteral(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WritePRJ(&buf, &Document{}))

	dec := charmap.Windows1251.NewDecoder()
	lines := bytes.SplitN(buf.Bytes(), []byte("\n"), 3)
	got1, err := dec.String(string(lines[0]))
	assert.NoError(t, err)
	got2, err := dec.String(string(lines[1]))
	assert.NoError(t, err)
	assert.Equal(t, prjHeader1, got1)
	assert.Equal(t, prjHeader2, got2)
}
