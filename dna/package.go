package dna

import "xdao.co/compository/publish"

// Package returns everything a publish run needs for this DNA.
func (f *File) Package() (publish.Package, error) {
	hash, err := f.Hash()
	if err != nil {
		return publish.Package{}, err
	}
	return publish.Package{
		Name:       f.Def.Name,
		Zomes:      f.Zomes(),
		DnaHash:    hash,
		UUID:       f.Def.UUID,
		Properties: f.Def.Properties,
	}, nil
}
