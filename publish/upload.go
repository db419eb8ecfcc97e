package publish

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"xdao.co/compository/codec"
	"xdao.co/compository/ledger"
	"xdao.co/compository/model"
)

// DefaultChunkSize is the largest chunk sent in one create_file_chunk call.
const DefaultChunkSize = 10 * 1024 * 1024

// Split cuts content into consecutive chunks of at most size bytes. Empty
// content yields no chunks. The chunks alias content.
func Split(content []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([][]byte, 0, (len(content)+size-1)/size)
	for len(content) > 0 {
		n := min(size, len(content))
		chunks = append(chunks, content[:n:n])
		content = content[n:]
	}
	return chunks
}

// UploadFile stores content as chunks and then creates the file metadata
// record listing the chunk hashes in content order. It returns the file's
// hash. Empty content is legal and produces a file with no chunks.
//
// If any chunk fails, no metadata is created; chunks already stored stay
// orphaned.
func (p *Publisher) UploadFile(ctx context.Context, name, fileType string, content []byte) (model.ContentHash, error) {
	chunks := Split(content, p.opts.ChunkSize)
	hashes := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.UploadConcurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := p.ledgerHash(gctx, ledger.KindChunk, chunk, FileStorageZome, FnCreateFileChunk, chunk)
			if err != nil {
				return fmt.Errorf("upload chunk %d/%d of %s: %w", i+1, len(chunks), name, err)
			}
			hashes[i] = hash
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	meta := model.FileMetadata{
		Name:         name,
		LastModified: model.TimestampOf(p.opts.Now()),
		Size:         len(content),
		FileType:     fileType,
		ChunksHashes: hashes,
	}
	key, err := codec.Marshal([]any{name, fileType, hashes})
	if err != nil {
		return "", err
	}
	hash, err := p.ledgerHash(ctx, ledger.KindFile, key, FileStorageZome, FnCreateFileMetadata, meta)
	if err != nil {
		return "", fmt.Errorf("create metadata of %s: %w", name, err)
	}
	p.log.Info("file uploaded", "name", name, "type", fileType, "size", len(content), "chunks", len(chunks), "hash", hash)
	p.opts.Reporter.FileUploaded(name, fileType, hash)
	return hash, nil
}
