// Package presets holds the fixed catalog of exam upload requirements.
package presets

import (
	"fmt"

	"examphoto/internal/common"
)

// Document types
const (
	Photo          = "Photo"
	Signature      = "Signature"
	OtherDocuments = "Other Documents"
)

// Preset is the upload requirement for one (category, document type) pair.
type Preset struct {
	Category     string `json:"category"`
	DocumentType string `json:"document_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	MinKB        int    `json:"min_kb"`
	MaxKB        int    `json:"max_kb"`
	DPI          int    `json:"dpi"`
}

// MinBytes returns the minimum accepted file size in bytes
func (p Preset) MinBytes() int {
	return p.MinKB * common.BytesPerKB
}

// MaxBytes returns the maximum accepted file size in bytes
func (p Preset) MaxBytes() int {
	return p.MaxKB * common.BytesPerKB
}

// Grayscale reports whether the output must be single-channel.
func (p Preset) Grayscale() bool {
	return p.DocumentType == Signature
}

func (p Preset) String() string {
	return fmt.Sprintf("%s / %s: %dx%dpx, %d-%d KB, %d dpi",
		p.Category, p.DocumentType, p.Width, p.Height, p.MinKB, p.MaxKB, p.DPI)
}

type category struct {
	name  string
	types []Preset
}

func standard(name string, dpi int) category {
	return category{
		name: name,
		types: []Preset{
			{DocumentType: Photo, Width: 200, Height: 230, MinKB: 20, MaxKB: 50, DPI: dpi},
			{DocumentType: Signature, Width: 140, Height: 60, MinKB: 10, MaxKB: 20, DPI: dpi},
			{DocumentType: OtherDocuments, Width: 300, Height: 400, MinKB: 50, MaxKB: 100, DPI: dpi},
		},
	}
}

var catalog = []category{
	{
		name: "TNPSC Group Exams",
		types: []Preset{
			{DocumentType: Photo, Width: 276, Height: 354, MinKB: 20, MaxKB: 50, DPI: 200},
			{DocumentType: Signature, Width: 472, Height: 157, MinKB: 10, MaxKB: 20, DPI: 200},
			{DocumentType: OtherDocuments, Width: 300, Height: 400, MinKB: 50, MaxKB: 100, DPI: 200},
		},
	},
	{
		name: "UPSC/IAS",
		types: []Preset{
			{DocumentType: Photo, Width: 350, Height: 350, MinKB: 20, MaxKB: 300, DPI: 96},
			{DocumentType: Signature, Width: 140, Height: 60, MinKB: 10, MaxKB: 20, DPI: 96},
			{DocumentType: OtherDocuments, Width: 1000, Height: 1000, MinKB: 50, MaxKB: 300, DPI: 96},
		},
	},
	standard("SSC (CGL/CHSL/MTS)", 96),
	standard("IBPS PO/Clerk/RRB", 96),
	standard("Railway (RRB NTPC/Group D)", 96),
}

// Lookup returns the preset for a category and document type.
func Lookup(categoryName, documentType string) (Preset, error) {
	for _, c := range catalog {
		if c.name != categoryName {
			continue
		}
		for _, p := range c.types {
			if p.DocumentType == documentType {
				p.Category = c.name
				return p, nil
			}
		}
		return Preset{}, fmt.Errorf("%w: %q has no document type %q", common.ErrUnknownPreset, categoryName, documentType)
	}
	return Preset{}, fmt.Errorf("%w: category %q", common.ErrUnknownPreset, categoryName)
}

// Categories lists category names in catalog order.
func Categories() []string {
	names := make([]string, 0, len(catalog))
	for _, c := range catalog {
		names = append(names, c.name)
	}
	return names
}

// DocumentTypes lists the document types every category offers.
func DocumentTypes() []string {
	return []string{Photo, Signature, OtherDocuments}
}

// All returns a copy of every preset in catalog order.
func All() []Preset {
	var all []Preset
	for _, c := range catalog {
		for _, p := range c.types {
			p.Category = c.name
			all = append(all, p)
		}
	}
	return all
}
