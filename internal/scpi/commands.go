package scpi

import (
	"fmt"
	"time"
)

// Settle delays between commands model scope-side rendering latency.
// They are protocol requirements, not tuning: issuing the binary read
// before the scope has rendered the hardcopy yields a short or empty
// transfer. Zero them through the orchestrator's options in tests.
const (
	lecroyConfigSettle  = 500 * time.Millisecond
	lecroyRenderSettle  = 4 * time.Second // full BMP render before first frame
	tekConfigSettle     = 200 * time.Millisecond
	tekRenderSettle     = 2 * time.Second
	keysightQuerySettle = 500 * time.Millisecond
	rigolQuerySettle    = 500 * time.Millisecond
)

// Step is one command of a capture sequence, with the settle delay to
// honor after sending it.
type Step struct {
	Command string
	Settle  time.Duration
}

// Sequence is an ordered command set whose final step triggers the
// binary screen transfer; the caller reads raw bytes after the last
// settle elapses.
type Sequence struct {
	Name  string
	Steps []Step
}

// CommandSets returns the sequences to try for a vendor, in order.
// The first sequence whose received byte count clears the caller's
// minimum threshold wins. Known vendors get their native sequence
// (RIGOL additionally carries the legacy unparameterized query for old
// firmware); UNKNOWN tries every vendor's sequence in a fixed priority
// order as a graceful-degradation path.
func CommandSets(v Vendor, color ColorMode) []Sequence {
	switch v {
	case VendorLeCroy:
		return []Sequence{lecroySequence(color)}
	case VendorTektronix:
		return []Sequence{tektronixSequence(color)}
	case VendorKeysight:
		return []Sequence{keysightSequence(color)}
	case VendorRigolSiglent:
		return rigolSequences(color)
	default:
		sets := []Sequence{keysightSequence(color)}
		sets = append(sets, rigolSequences(color)...)
		sets = append(sets, lecroySequence(color), tektronixSequence(color))
		return sets
	}
}

// lecroySequence configures hardcopy (BMP, background color, remote
// destination) with HCSU, then triggers the transfer with SCREEN_DUMP.
func lecroySequence(color ColorMode) Sequence {
	return Sequence{
		Name: "lecroy-screendump",
		Steps: []Step{
			{
				Command: fmt.Sprintf("HCSU DEV,BMP,FORMAT,PORTRAIT,BCKG,%s,DEST,REMOTE,PORT,NET", color),
				Settle:  lecroyConfigSettle,
			},
			{Command: "SCREEN_DUMP", Settle: lecroyRenderSettle},
		},
	}
}

// tektronixSequence routes hardcopy output to the bus and starts it.
// INKSaver ON maps to a white background, OFF to the native black.
func tektronixSequence(color ColorMode) Sequence {
	ink := "ON"
	if color == ColorBlack {
		ink = "OFF"
	}
	return Sequence{
		Name: "tektronix-hardcopy",
		Steps: []Step{
			{Command: "HARDcopy:PORT GPIB"},
			{Command: "HARDcopy:FORMat BMP"},
			{Command: fmt.Sprintf("HARDcopy:INKSaver %s", ink), Settle: tekConfigSettle},
			{Command: "HARDcopy START", Settle: tekRenderSettle},
		},
	}
}

// keysightSequence issues the :DISP:DATA? binary-block query. INKS is
// the ink-saver (white) scheme, SCR the native screen colors.
func keysightSequence(color ColorMode) Sequence {
	scheme := "INKS"
	if color == ColorBlack {
		scheme = "SCR"
	}
	return Sequence{
		Name: "keysight-dispdata",
		Steps: []Step{
			{Command: fmt.Sprintf(":DISP:DATA PNG,%s,COL", scheme), Settle: keysightQuerySettle},
			{Command: fmt.Sprintf(":DISP:DATA? PNG,%s,COL", scheme), Settle: keysightQuerySettle},
		},
	}
}

// rigolSequences carries the parameterized query (invert OFF = white
// background) plus the plain legacy form older firmware requires.
func rigolSequences(color ColorMode) []Sequence {
	invert := "OFF"
	if color == ColorBlack {
		invert = "ON"
	}
	return []Sequence{
		{
			Name: "rigol-dispdata",
			Steps: []Step{
				{Command: fmt.Sprintf(":DISP:DATA? ON,%s,PNG", invert), Settle: rigolQuerySettle},
			},
		},
		{
			Name: "rigol-dispdata-legacy",
			Steps: []Step{
				{Command: ":DISP:DATA?", Settle: rigolQuerySettle},
			},
		},
	}
}
