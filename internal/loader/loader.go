// Package loader implements the default FragmentLoader adapter (spec.md §6):
// a line-oriented fragment-record file parser. The scanning style — a
// sequential line scanner reporting the file and line number of a
// malformed record — is adapted from the teacher's
// src/molecule/smiles_loader.go, applied to a much simpler record format
// purpose-built for this domain instead of SMILES.
//
// Filename convention (spec.md §6): a path whose base name starts with "r"
// is a rigid fragment, "l" is a linker. Fragment IDs are assigned densely in
// the order spec.md §3 requires: all rigids first ([0,R)), then all
// linkers ([R,R+L)); the Loader stable-sorts its input paths by kind before
// assigning ids, regardless of the order they were given on the command
// line.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cx-luo/synthline/internal/atom"
	"github.com/cx-luo/synthline/internal/atomtype"
	"github.com/cx-luo/synthline/internal/errs"
	"github.com/cx-luo/synthline/internal/fragment"
	"github.com/cx-luo/synthline/internal/ports"
)

var _ ports.FragmentLoader = (*Loader)(nil)

// Loader reads fragment records from a fixed list of files, one fragment per
// file. It is not safe for concurrent use; the pipeline driver calls Next
// from a single goroutine during the seeding phase.
type Loader struct {
	paths  []string
	pos    int
	nextID int
}

// New constructs a Loader over paths, reordering them so every rigid
// fragment is assigned a fragmentId before any linker (spec.md §3).
func New(paths []string) *Loader {
	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.SliceStable(ordered, func(i, j int) bool {
		return kindOf(ordered[i]) < kindOf(ordered[j])
	})
	return &Loader{paths: ordered}
}

func kindOf(path string) fragment.Kind {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(base, "l") {
		return fragment.Linker
	}
	return fragment.Rigid
}

// Next implements ports.FragmentLoader.
func (l *Loader) Next(_ context.Context) (*fragment.Fragment, bool, error) {
	if l.pos >= len(l.paths) {
		return nil, false, nil
	}
	path := l.paths[l.pos]
	l.pos++

	f, err := parseFile(path, kindOf(path), l.nextID)
	if err != nil {
		return nil, false, err
	}
	l.nextID++
	return f, true, nil
}

// parseFile reads one fragment record file. Record format, one directive
// per line:
//
//	NAME <string>
//	ATOM <index> <element> LINKER <maxConnect>
//	ATOM <index> <element> RIGID <allowType1>[,<allowType2>...]
//	ATOM <index> <element> SIMPLE
//	BOND <beg> <end> <order>
//
// Blank lines and lines starting with "#" are ignored.
func parseFile(path string, kind fragment.Kind, fragmentID int) (*fragment.Fragment, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.InputMalformed, err, fmt.Sprintf("loader: opening %s", path))
	}
	defer fh.Close()

	f := &fragment.Fragment{FragmentID: fragmentID, Kind: kind, Name: filepath.Base(path)}
	var connID uint64 = 1

	scanner := bufio.NewScanner(fh)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "NAME":
			if len(fields) < 2 {
				return nil, malformed(path, lineNo, "NAME requires a value")
			}
			f.Name = fields[1]
		case "ATOM":
			a, err := parseAtom(fields, &connID, fragmentID)
			if err != nil {
				return nil, malformed(path, lineNo, err.Error())
			}
			f.Atoms = append(f.Atoms, a)
		case "BOND":
			b, err := parseBond(fields)
			if err != nil {
				return nil, malformed(path, lineNo, err.Error())
			}
			f.Bonds = append(f.Bonds, b)
		default:
			return nil, malformed(path, lineNo, "unknown directive "+fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.InputMalformed, err, fmt.Sprintf("loader: reading %s", path))
	}
	if len(f.Atoms) == 0 {
		return nil, malformed(path, lineNo, "fragment has no atoms")
	}
	return f, nil
}

func malformed(path string, line int, reason string) error {
	return errs.New(errs.InputMalformed, fmt.Sprintf("%s:%d: %s", path, line, reason))
}

// ATOM <index> <element> LINKER <maxConnect>
// ATOM <index> <element> RIGID <allow1>[,<allow2>...]
// ATOM <index> <element> SIMPLE
func parseAtom(fields []string, connID *uint64, fragmentID int) (atom.Atom, error) {
	if len(fields) < 4 {
		return atom.Atom{}, fmt.Errorf("ATOM requires at least index, element, kind")
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return atom.Atom{}, fmt.Errorf("ATOM index %q is not an integer", fields[1])
	}
	el := fields[2]

	a := atom.Atom{Type: atomtype.AtomType{Element: el}, FragmentID: fragmentID}

	switch fields[3] {
	case "LINKER":
		if len(fields) < 5 {
			return atom.Atom{}, fmt.Errorf("LINKER atom requires maxConnect")
		}
		mc, err := strconv.Atoi(fields[4])
		if err != nil {
			return atom.Atom{}, fmt.Errorf("LINKER maxConnect %q is not an integer", fields[4])
		}
		a.Kind = atom.LinkerStub
		a.MaxConnect = mc
		*connID++
		a.ConnectionID = *connID
	case "RIGID":
		if len(fields) < 5 {
			return atom.Atom{}, fmt.Errorf("RIGID atom requires an allow-list")
		}
		var allow atomtype.AllowList
		for _, tok := range strings.Split(fields[4], ",") {
			allow = append(allow, atomtype.Parse(tok))
		}
		a.Kind = atom.RigidStub
		a.MaxConnect = 1
		a.AllowList = allow
		*connID++
		a.ConnectionID = *connID
	case "SIMPLE":
		a.Kind = atom.Simple
	default:
		return atom.Atom{}, fmt.Errorf("unknown atom kind %q", fields[3])
	}
	return a, nil
}

func parseBond(fields []string) (atom.Bond, error) {
	if len(fields) < 4 {
		return atom.Bond{}, fmt.Errorf("BOND requires beg, end, order")
	}
	beg, err := strconv.Atoi(fields[1])
	if err != nil {
		return atom.Bond{}, fmt.Errorf("BOND beg %q is not an integer", fields[1])
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return atom.Bond{}, fmt.Errorf("BOND end %q is not an integer", fields[2])
	}
	order, err := strconv.Atoi(fields[3])
	if err != nil {
		return atom.Bond{}, fmt.Errorf("BOND order %q is not an integer", fields[3])
	}
	return atom.Bond{Beg: beg, End: end, Order: order}, nil
}
