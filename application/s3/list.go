package s3

import (
	"encoding/base64"
	"sort"
	"strings"

	s3model "localaws/domain/s3"
)

const defaultMaxKeys = 1000

// ListObjects implements the V1 listing: prefix, delimiter rollup, marker
// pagination.
func (p *Provider) ListObjects(input *ListObjectsInput) (*s3model.ListBucketResult, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	maxKeys := input.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}

	entries := p.currentObjects(bucket)
	keys, prefixes := rollupByDelimiter(entries, input.Prefix, input.Delimiter)

	result := &s3model.ListBucketResult{
		Xmlns:        s3model.Namespace,
		Name:         input.Bucket,
		Prefix:       input.Prefix,
		Marker:       input.Marker,
		MaxKeys:      maxKeys,
		Delimiter:    input.Delimiter,
		EncodingType: input.EncodingType,
	}

	emitted := 0
	for _, row := range mergeListRows(keys, prefixes) {
		if input.Marker != "" && row.sortKey <= input.Marker {
			continue
		}
		if emitted == maxKeys {
			result.IsTruncated = true
			break
		}
		if row.prefix != "" {
			result.CommonPrefixes = append(result.CommonPrefixes, s3model.CommonPrefix{Prefix: row.prefix})
		} else {
			result.Contents = append(result.Contents, row.entry)
		}
		result.NextMarker = row.sortKey
		emitted++
	}
	if !result.IsTruncated {
		result.NextMarker = ""
	}
	return result, nil
}

// ListObjectsV2 implements the V2 listing: continuation tokens, start-after
// and key counts.
func (p *Provider) ListObjectsV2(input *ListObjectsV2Input) (*s3model.ListBucketResultV2, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	maxKeys := input.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}

	startAfter := input.StartAfter
	if input.ContinuationToken != "" {
		if decoded, err := base64.StdEncoding.DecodeString(input.ContinuationToken); err == nil {
			startAfter = string(decoded)
		}
	}

	entries := p.currentObjects(bucket)
	keys, prefixes := rollupByDelimiter(entries, input.Prefix, input.Delimiter)

	result := &s3model.ListBucketResultV2{
		Xmlns:             s3model.Namespace,
		Name:              input.Bucket,
		Prefix:            input.Prefix,
		StartAfter:        input.StartAfter,
		ContinuationToken: input.ContinuationToken,
		MaxKeys:           maxKeys,
		Delimiter:         input.Delimiter,
		EncodingType:      input.EncodingType,
	}

	lastEmitted := ""
	for _, row := range mergeListRows(keys, prefixes) {
		if startAfter != "" && row.sortKey <= startAfter {
			continue
		}
		if result.KeyCount == maxKeys {
			result.IsTruncated = true
			result.NextContinuationToken = base64.StdEncoding.EncodeToString([]byte(lastEmitted))
			break
		}
		if row.prefix != "" {
			result.CommonPrefixes = append(result.CommonPrefixes, s3model.CommonPrefix{Prefix: row.prefix})
		} else {
			entry := row.entry
			if !input.FetchOwner {
				entry.Owner = nil
			}
			result.Contents = append(result.Contents, entry)
		}
		lastEmitted = row.sortKey
		result.KeyCount++
	}
	return result, nil
}

// ListObjectVersions lists versions and delete markers, newest first per
// key, with key/version markers for pagination.
func (p *Provider) ListObjectVersions(input *ListObjectVersionsInput) (*s3model.ListVersionsResult, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	maxKeys := input.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}

	bucket.objMu.Lock()
	type versionRow struct {
		key   string
		entry *s3model.VersionEntry
		latest bool
	}
	var rows []versionRow
	sortedKeys := make([]string, 0, len(bucket.versions))
	for key := range bucket.versions {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Strings(sortedKeys)
	for _, key := range sortedKeys {
		if input.Prefix != "" && !strings.HasPrefix(key, input.Prefix) {
			continue
		}
		history := bucket.versions[key]
		// Newest first.
		for i := len(history) - 1; i >= 0; i-- {
			rows = append(rows, versionRow{key: key, entry: history[i], latest: i == len(history)-1})
		}
	}
	bucket.objMu.Unlock()

	result := &s3model.ListVersionsResult{
		Xmlns:           s3model.Namespace,
		Name:            input.Bucket,
		Prefix:          input.Prefix,
		KeyMarker:       input.KeyMarker,
		VersionIDMarker: input.VersionIDMarker,
		MaxKeys:         maxKeys,
		Delimiter:       input.Delimiter,
	}

	started := input.KeyMarker == ""
	emitted := 0
	for _, row := range rows {
		if !started {
			if row.key > input.KeyMarker {
				started = true
			} else if row.key == input.KeyMarker &&
				(input.VersionIDMarker == "" || row.entry.VersionID == input.VersionIDMarker) {
				// Resume strictly after the marker entry.
				if input.VersionIDMarker != "" {
					started = true
				}
				continue
			} else {
				continue
			}
		}
		if emitted == maxKeys {
			result.IsTruncated = true
			break
		}
		owner := s3model.DefaultOwner()
		if row.entry.IsDeleteMark {
			result.DeleteMarkers = append(result.DeleteMarkers, s3model.DeleteMarkerEntry{
				Key:          row.key,
				VersionID:    row.entry.VersionID,
				IsLatest:     row.latest,
				LastModified: s3model.NewTimestamp(row.entry.LastModified),
				Owner:        owner,
			})
		} else {
			result.Versions = append(result.Versions, s3model.ObjectVersionEntry{
				Key:          row.key,
				VersionID:    row.entry.VersionID,
				IsLatest:     row.latest,
				LastModified: s3model.NewTimestamp(row.entry.Object.LastModified),
				ETag:         row.entry.Object.ETag,
				Size:         row.entry.Object.Size(),
				StorageClass: row.entry.Object.StorageClass,
				Owner:        owner,
			})
		}
		result.NextKeyMarker = row.key
		result.NextVersionIDMarker = row.entry.VersionID
		emitted++
	}
	if !result.IsTruncated {
		result.NextKeyMarker = ""
		result.NextVersionIDMarker = ""
	}
	return result, nil
}

// currentObjects snapshots the bucket's non-deleted latest objects sorted
// by key.
func (p *Provider) currentObjects(bucket *Bucket) []s3model.ObjectEntry {
	bucket.objMu.Lock()
	defer bucket.objMu.Unlock()

	keys := make([]string, 0, len(bucket.versions))
	for key := range bucket.versions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var entries []s3model.ObjectEntry
	for _, key := range keys {
		entry := latestEntry(bucket.versions[key])
		if entry == nil || entry.IsDeleteMark {
			continue
		}
		entries = append(entries, s3model.ObjectEntry{
			Key:          key,
			LastModified: s3model.NewTimestamp(entry.Object.LastModified),
			ETag:         entry.Object.ETag,
			Size:         entry.Object.Size(),
			StorageClass: entry.Object.StorageClass,
			Owner:        s3model.DefaultOwner(),
		})
	}
	return entries
}

// listRow is one output row of a flat listing: either an object entry or a
// rolled-up common prefix.
type listRow struct {
	sortKey string
	entry   s3model.ObjectEntry
	prefix  string
}

// rollupByDelimiter filters entries by prefix and rolls up keys sharing a
// delimiter-bounded sub-prefix into CommonPrefixes.
func rollupByDelimiter(entries []s3model.ObjectEntry, prefix, delimiter string) ([]s3model.ObjectEntry, []string) {
	var keys []s3model.ObjectEntry
	prefixSet := map[string]bool{}
	var prefixes []string
	for _, entry := range entries {
		if prefix != "" && !strings.HasPrefix(entry.Key, prefix) {
			continue
		}
		if delimiter != "" {
			rest := entry.Key[len(prefix):]
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				common := prefix + rest[:idx+len(delimiter)]
				if !prefixSet[common] {
					prefixSet[common] = true
					prefixes = append(prefixes, common)
				}
				continue
			}
		}
		keys = append(keys, entry)
	}
	return keys, prefixes
}

// mergeListRows interleaves object entries and common prefixes in key
// order, which is how S3 orders a delimited listing.
func mergeListRows(entries []s3model.ObjectEntry, prefixes []string) []listRow {
	rows := make([]listRow, 0, len(entries)+len(prefixes))
	for _, entry := range entries {
		rows = append(rows, listRow{sortKey: entry.Key, entry: entry})
	}
	for _, prefix := range prefixes {
		rows = append(rows, listRow{sortKey: prefix, prefix: prefix})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].sortKey < rows[j].sortKey })
	return rows
}
