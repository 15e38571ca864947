package migration

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
)

const previewExt = ".mp3"

// Layout places each asset role in a bucket and directory.
type Layout struct {
	PrivateBucket string
	PublicBucket  string
	MasterDir     string
	PreviewDir    string
	ImageDir      string
}

// DefaultLayout keeps masters private and previews and covers public.
func DefaultLayout(privateBucket, publicBucket string) Layout {
	return Layout{
		PrivateBucket: privateBucket,
		PublicBucket:  publicBucket,
		MasterDir:     "beats",
		PreviewDir:    "previews",
		ImageDir:      "covers",
	}
}

// target returns the bucket and key an asset is published under. Preview
// keys always carry the compressed extension.
func (l Layout) target(title string, s Suffix) (bucket, key string) {
	name := title + s.Value
	switch s.Role {
	case RoleMaster:
		return l.PrivateBucket, path.Join(l.MasterDir, name)
	case RolePreview:
		name = strings.TrimSuffix(name, path.Ext(name)) + previewExt
		return l.PublicBucket, path.Join(l.PreviewDir, name)
	default:
		return l.PublicBucket, path.Join(l.ImageDir, name)
	}
}

// Published is the outcome of publishing one beat folder.
type Published struct {
	FileKey    string
	PreviewKey string
	ImageKey   string
	Uploaded   int
	Existing   int
	Problems   []string
}

// Complete reports whether the beat may be catalogued.
func (p Published) Complete() bool {
	return len(p.Problems) == 0 && p.FileKey != "" && p.PreviewKey != "" && p.ImageKey != ""
}

func (p *Published) record(role Role, key string) {
	switch role {
	case RoleMaster:
		p.FileKey = key
	case RolePreview:
		p.PreviewKey = key
	case RoleImage:
		p.ImageKey = key
	}
}

// Publisher copies beat assets from the source into the object store.
type Publisher struct {
	source     Source
	store      ObjectStore
	transcoder Transcoder
	layout     Layout
}

func NewPublisher(source Source, store ObjectStore, transcoder Transcoder, layout Layout) *Publisher {
	return &Publisher{source: source, store: store, transcoder: transcoder, layout: layout}
}

// Publish processes every recognized file of a beat folder. A failing file
// is recorded as a problem and the remaining files are still attempted.
func (p *Publisher) Publish(ctx context.Context, title string, files []Entry) Published {
	var out Published
	for _, f := range files {
		s, ok := MatchSuffix(f.Name)
		if !ok {
			continue
		}
		if !strings.EqualFold(f.Name, expectedName(title, s)) {
			msg := fmt.Sprintf("filename %q does not match %q", f.Name, expectedName(title, s))
			logger.Warn("asset name mismatch", logger.String("title", title), logger.String("file", f.Name))
			out.Problems = append(out.Problems, msg)
			continue
		}

		bucket, key := p.layout.target(title, s)
		uploaded, err := p.publishOne(ctx, f, s, bucket, key)
		if err != nil {
			logger.Warn("asset publish failed",
				logger.String("title", title),
				logger.String("file", f.Name),
				logger.String("role", s.Role.String()),
				logger.ErrorField(err))
			out.Problems = append(out.Problems, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		if uploaded {
			out.Uploaded++
		} else {
			out.Existing++
		}
		out.record(s.Role, key)
	}
	return out
}

func (p *Publisher) publishOne(ctx context.Context, f Entry, s Suffix, bucket, key string) (bool, error) {
	exists, err := p.store.Exists(ctx, bucket, key)
	if err != nil {
		return false, fmt.Errorf("check %s/%s: %w", bucket, key, err)
	}
	if exists {
		logger.Debug("asset already published", logger.String("bucket", bucket), logger.String("key", key))
		return false, nil
	}

	data, err := p.source.Download(ctx, f.ID)
	if err != nil {
		return false, fmt.Errorf("download: %w", err)
	}

	contentType := "audio/wav"
	switch s.Role {
	case RolePreview:
		data, err = p.transcoder.ToMP3(ctx, data, path.Ext(f.Name))
		if err != nil {
			return false, fmt.Errorf("transcode: %w", err)
		}
		contentType = "audio/mpeg"
	case RoleImage:
		contentType = "image/jpeg"
	}

	if err := p.store.Put(ctx, bucket, key, data, contentType); err != nil {
		return false, fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	logger.Info("asset published", logger.String("bucket", bucket), logger.String("key", key), logger.Int("bytes", len(data)))
	return true, nil
}
