// Package onenand holds the OneNAND partition layout of the Atlas board.
package onenand

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PageSize is the unit the layout is written in.
const PageSize = 256 << 10

// DevicePages is the size of the part in 256 KiB pages.
const DevicePages = 2048

// ReservedPages at the start of the part hold the first stage bootloader
// and the PIT. No partition may map them.
const ReservedPages = 2

// Partition is an MTD partition. Offset and Size are in bytes.
type Partition struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// End is the first byte past p.
func (p Partition) End() int64 {
	return p.Offset + p.Size
}

func part(name string, offPages, sizePages int64) Partition {
	return Partition{Name: name, Offset: offPages * PageSize, Size: sizePages * PageSize}
}

// Layout is the partition table in registration order.
type Layout []Partition

// Atlas returns the board's partition table. The order matches the MTD
// numbering the bootloader and recovery expect, not the flash order.
func Atlas() Layout {
	return Layout{
		part("boot", 72, 30),
		part("recovery", 102, 30),
		part("system", 132, 1100),
		part("cache", 1232, 100),
		part("datadata", 1332, 672),
		part("efs", 2, 40),
		// Spare blocks for Samsung's bad block management layer.
		part("reservoir", 2004, 44),
	}
}

var (
	ErrOverlap  = errors.New("onenand: partitions overlap")
	ErrReserved = errors.New("onenand: partition maps the bootloader pages")
	ErrBounds   = errors.New("onenand: partition outside the device")
	ErrName     = errors.New("onenand: bad partition name")
)

// Validate checks names, bounds and that no two partitions overlap.
// Gaps are allowed: the bootloaders live in them.
func (l Layout) Validate() error {
	seen := make(map[string]bool, len(l))
	for _, p := range l {
		if p.Name == "" || strings.ContainsAny(p.Name, "(),:@") {
			return fmt.Errorf("%w: %q", ErrName, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate %q", ErrName, p.Name)
		}
		seen[p.Name] = true
		if p.Size <= 0 || p.Offset < 0 || p.End() > DevicePages*PageSize {
			return fmt.Errorf("%w: %s", ErrBounds, p.Name)
		}
		if p.Offset < ReservedPages*PageSize {
			return fmt.Errorf("%w: %s starts at %#x", ErrReserved, p.Name, p.Offset)
		}
	}
	s := l.Sorted()
	for i := 1; i < len(s); i++ {
		if s[i].Offset < s[i-1].End() {
			return fmt.Errorf("%w: %s and %s", ErrOverlap, s[i-1].Name, s[i].Name)
		}
	}
	return nil
}

// Sorted returns a copy of l in flash order.
func (l Layout) Sorted() Layout {
	out := make(Layout, len(l))
	copy(out, l)
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// ByName returns the partition called name.
func (l Layout) ByName(name string) (Partition, bool) {
	for _, p := range l {
		if p.Name == name {
			return p, true
		}
	}
	return Partition{}, false
}

// MTDParts renders l as a kernel mtdparts= argument for device, keeping
// registration order.
func (l Layout) MTDParts(device string) string {
	var b strings.Builder
	b.WriteString("mtdparts=")
	b.WriteString(device)
	b.WriteByte(':')
	for i, p := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%dk@%dk(%s)", p.Size>>10, p.Offset>>10, p.Name)
	}
	return b.String()
}
