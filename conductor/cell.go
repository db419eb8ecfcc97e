package conductor

import (
	"context"

	"xdao.co/compository/model"
)

// FindCell returns the cell running dnaHash.
func FindCell(cells []InstalledCell, dnaHash string) (CellID, error) {
	for _, cell := range cells {
		if cell.CellID.DnaHash == dnaHash {
			return cell.CellID, nil
		}
	}
	return CellID{}, model.NotFoundError("could not find dna %s in this installed app", dnaHash)
}

// ResolveCell locates the cell of installedAppID that runs dnaHash.
func (c *Client) ResolveCell(ctx context.Context, installedAppID, dnaHash string) (CellID, error) {
	info, err := c.AppInfo(ctx, installedAppID)
	if err != nil {
		return CellID{}, err
	}
	if info == nil {
		return CellID{}, model.NotFoundError("could not find app with id %s", installedAppID)
	}
	return FindCell(info.CellData, dnaHash)
}
