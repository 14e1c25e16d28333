package s3

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apps3 "localaws/application/s3"
	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

// Handler dispatches resolved operation tags to the provider and renders
// HTTP responses.
type Handler struct {
	provider *apps3.Provider
	logger   *zap.Logger
}

// NewHandler creates the S3 handler.
func NewHandler(provider *apps3.Provider, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, logger: logger}
}

// Serve handles one request for the given operation, bucket and key.
func (h *Handler) Serve(op Operation, bucket, key string, w http.ResponseWriter, r *http.Request) {
	b := &binder{r: r, bucket: bucket, key: key}
	if err := h.dispatch(op, b, w, r); err != nil {
		h.logger.Debug("s3 operation failed", zap.Int("operation", int(op)), zap.Error(err))
		h.writeError(w, r, err)
	}
}

// dispatch binds the input, invokes the provider and writes the success
// response. Returned errors are rendered by Serve.
func (h *Handler) dispatch(op Operation, b *binder, w http.ResponseWriter, r *http.Request) error {
	switch op {
	case OpListBuckets:
		return respondXML(w, http.StatusOK, h.provider.ListBuckets())

	case OpCreateBucket:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		region := ""
		if body, err := b.readBody(); err == nil && len(body) > 0 {
			var cfg s3model.CreateBucketConfiguration
			if err := s3model.Unmarshal(body, &cfg); err != nil {
				return apperrors.NewMalformedXMLError()
			}
			region = cfg.LocationConstraint
		}
		input := &apps3.CreateBucketInput{
			Bucket:            bucket,
			Region:            region,
			ObjectLockEnabled: b.headerBool("x-amz-bucket-object-lock-enabled"),
			ObjectOwnership:   s3model.ObjectOwnership(b.headerStr("x-amz-object-ownership")),
			ACL:               b.headerStr("x-amz-acl"),
		}
		if err := h.provider.CreateBucket(input); err != nil {
			return err
		}
		w.Header().Set("Location", "/"+bucket)
		w.WriteHeader(http.StatusOK)
		return nil

	case OpDeleteBucket:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		return respondVoid(w, h.provider.DeleteBucket(bucket))

	case OpHeadBucket:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		if err := h.provider.HeadBucket(bucket); err != nil {
			return err
		}
		w.WriteHeader(http.StatusOK)
		return nil

	case OpGetBucketLocation:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		doc, err := h.provider.GetBucketLocation(bucket)
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, doc)

	case OpPutObject:
		input, err := b.bindPutObject()
		if err != nil {
			return err
		}
		out, err := h.provider.PutObject(input)
		if err != nil {
			return err
		}
		writePutObjectHeaders(w, out)
		w.WriteHeader(http.StatusOK)
		return nil

	case OpGetObject:
		input, err := b.bindGetObject()
		if err != nil {
			return err
		}
		out, err := h.provider.GetObject(input)
		if err != nil {
			return err
		}
		writeObjectHeaders(w, out)
		if out.PartialBody {
			w.Header().Set("Content-Range", out.ContentRange)
			w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
			w.WriteHeader(http.StatusPartialContent)
		} else {
			w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
			w.WriteHeader(http.StatusOK)
		}
		_, err = w.Write(out.Body)
		return err

	case OpHeadObject:
		input, err := b.bindGetObject()
		if err != nil {
			return err
		}
		out, err := h.provider.HeadObject(input)
		if err != nil {
			return err
		}
		writeObjectHeaders(w, out)
		w.Header().Set("Content-Length", strconv.FormatInt(out.Object.Size(), 10))
		w.WriteHeader(http.StatusOK)
		return nil

	case OpDeleteObject:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		key, err := b.requireKey()
		if err != nil {
			return err
		}
		out, err := h.provider.DeleteObject(&apps3.DeleteObjectInput{
			Bucket:    bucket,
			Key:       key,
			VersionID: b.queryStr("versionId"),
		})
		if err != nil {
			return err
		}
		if out.DeleteMarker {
			w.Header().Set("x-amz-delete-marker", "true")
		}
		if out.VersionID != "" {
			w.Header().Set("x-amz-version-id", out.VersionID)
		}
		w.WriteHeader(http.StatusNoContent)
		return nil

	case OpDeleteObjects:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		doc, err := parseXMLBody[s3model.Delete](b)
		if err != nil {
			return err
		}
		result, err := h.provider.DeleteObjects(&apps3.DeleteObjectsInput{Bucket: bucket, Delete: doc})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	case OpCopyObject:
		input, err := b.bindCopyObject()
		if err != nil {
			return err
		}
		out, err := h.provider.CopyObject(input)
		if err != nil {
			return err
		}
		if out.VersionID != "" {
			w.Header().Set("x-amz-version-id", out.VersionID)
		}
		return respondXML(w, http.StatusOK, out.Result)

	case OpPostObject:
		return h.servePostObject(b, w, r)

	case OpListObjects:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		result, err := h.provider.ListObjects(&apps3.ListObjectsInput{
			Bucket:       bucket,
			Prefix:       b.queryStr("prefix"),
			Delimiter:    b.queryStr("delimiter"),
			Marker:       b.queryStr("marker"),
			MaxKeys:      b.queryInt("max-keys"),
			EncodingType: b.queryStr("encoding-type"),
		})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	case OpListObjectsV2:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		result, err := h.provider.ListObjectsV2(&apps3.ListObjectsV2Input{
			Bucket:            bucket,
			Prefix:            b.queryStr("prefix"),
			Delimiter:         b.queryStr("delimiter"),
			StartAfter:        b.queryStr("start-after"),
			ContinuationToken: b.queryStr("continuation-token"),
			MaxKeys:           b.queryInt("max-keys"),
			EncodingType:      b.queryStr("encoding-type"),
			FetchOwner:        b.queryStr("fetch-owner") == "true",
		})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	case OpListObjectVersions:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		result, err := h.provider.ListObjectVersions(&apps3.ListObjectVersionsInput{
			Bucket:          bucket,
			Prefix:          b.queryStr("prefix"),
			Delimiter:       b.queryStr("delimiter"),
			KeyMarker:       b.queryStr("key-marker"),
			VersionIDMarker: b.queryStr("version-id-marker"),
			MaxKeys:         b.queryInt("max-keys"),
		})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	case OpCreateMultipartUpload:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		key, err := b.requireKey()
		if err != nil {
			return err
		}
		result, err := h.provider.CreateMultipartUpload(&apps3.CreateMultipartUploadInput{
			Bucket:            bucket,
			Key:               key,
			ContentType:       b.headerStr("Content-Type"),
			Metadata:          b.collectMetadata(),
			StorageClass:      s3model.StorageClass(b.headerStr("x-amz-storage-class")),
			Tagging:           parseTaggingHeader(b.headerStr("x-amz-tagging")),
			ChecksumAlgorithm: s3model.ChecksumAlgorithm(b.headerStr("x-amz-checksum-algorithm")),
			ChecksumType:      s3model.ChecksumType(b.headerStr("x-amz-checksum-type")),
		})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	case OpUploadPart:
		input, err := b.bindUploadPart()
		if err != nil {
			return err
		}
		out, err := h.provider.UploadPart(input)
		if err != nil {
			return err
		}
		w.Header().Set("ETag", out.ETag)
		w.WriteHeader(http.StatusOK)
		return nil

	case OpCompleteMultipartUpload:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		key, err := b.requireKey()
		if err != nil {
			return err
		}
		doc, err := parseXMLBody[s3model.CompleteMultipartUpload](b)
		if err != nil {
			return err
		}
		out, err := h.provider.CompleteMultipartUpload(&apps3.CompleteMultipartUploadInput{
			Bucket:   bucket,
			Key:      key,
			UploadID: b.queryStr("uploadId"),
			Parts:    doc,
		})
		if err != nil {
			return err
		}
		if out.VersionID != "" {
			w.Header().Set("x-amz-version-id", out.VersionID)
		}
		return respondXML(w, http.StatusOK, out.Result)

	case OpAbortMultipartUpload:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		key, err := b.requireKey()
		if err != nil {
			return err
		}
		return respondVoid(w, h.provider.AbortMultipartUpload(&apps3.AbortMultipartUploadInput{
			Bucket:   bucket,
			Key:      key,
			UploadID: b.queryStr("uploadId"),
		}))

	case OpListParts:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		key, err := b.requireKey()
		if err != nil {
			return err
		}
		result, err := h.provider.ListParts(&apps3.ListPartsInput{
			Bucket:           bucket,
			Key:              key,
			UploadID:         b.queryStr("uploadId"),
			MaxParts:         b.queryInt("max-parts"),
			PartNumberMarker: b.queryInt("part-number-marker"),
		})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	case OpListMultipartUploads:
		bucket, err := b.requireBucket()
		if err != nil {
			return err
		}
		result, err := h.provider.ListMultipartUploads(&apps3.ListMultipartUploadsInput{
			Bucket:     bucket,
			Prefix:     b.queryStr("prefix"),
			Delimiter:  b.queryStr("delimiter"),
			MaxUploads: b.queryInt("max-uploads"),
		})
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, result)

	default:
		return h.dispatchConfig(op, b, w)
	}
}

// writePutObjectHeaders writes the identity headers of a stored object.
func writePutObjectHeaders(w http.ResponseWriter, out *apps3.PutObjectOutput) {
	w.Header().Set("ETag", out.ETag)
	if out.VersionID != "" {
		w.Header().Set("x-amz-version-id", out.VersionID)
	}
	if out.SSEAlgorithm != "" {
		w.Header().Set("x-amz-server-side-encryption", string(out.SSEAlgorithm))
	}
}

// writeObjectHeaders writes the metadata headers of a read object.
func writeObjectHeaders(w http.ResponseWriter, out *apps3.GetObjectOutput) {
	object := out.Object
	w.Header().Set("ETag", object.ETag)
	w.Header().Set("Last-Modified", object.LastModified.UTC().Format(http.TimeFormat))
	w.Header().Set("Accept-Ranges", "bytes")
	if object.ContentType != "" {
		w.Header().Set("Content-Type", object.ContentType)
	}
	if object.ContentEncoding != "" {
		w.Header().Set("Content-Encoding", object.ContentEncoding)
	}
	if object.ContentLanguage != "" {
		w.Header().Set("Content-Language", object.ContentLanguage)
	}
	if object.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", object.ContentDisposition)
	}
	if object.CacheControl != "" {
		w.Header().Set("Cache-Control", object.CacheControl)
	}
	if out.VersionID != "" {
		w.Header().Set("x-amz-version-id", out.VersionID)
	}
	if object.StorageClass != "" && object.StorageClass != "STANDARD" {
		w.Header().Set("x-amz-storage-class", string(object.StorageClass))
	}
	if object.SSEAlgorithm != "" {
		w.Header().Set("x-amz-server-side-encryption", string(object.SSEAlgorithm))
	}
	if out.TaggingCount > 0 {
		w.Header().Set("x-amz-tagging-count", strconv.Itoa(out.TaggingCount))
	}
	for name, value := range object.Metadata {
		w.Header().Set(metadataPrefix+name, value)
	}
}

// respondXML serializes a document with the XML declaration.
func respondXML(w http.ResponseWriter, status int, doc interface{}) error {
	body, err := s3model.Marshal(doc)
	if err != nil {
		return apperrors.NewInternalS3Error(err)
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// respondVoid renders 204 on success.
func respondVoid(w http.ResponseWriter, err error) error {
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// writeError renders the XML error body, or a bare status for HEAD
// requests.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s3Err, ok := err.(*apperrors.S3Error)
	if !ok {
		s3Err = apperrors.NewInternalS3Error(err)
	}
	status := s3Err.HTTPStatus()
	if r.Method == http.MethodHead || status == http.StatusNotModified {
		w.WriteHeader(status)
		return
	}
	body, marshalErr := s3model.Marshal(&s3model.ErrorDocument{
		Code:      string(s3Err.Code),
		Message:   s3Err.Message,
		Resource:  s3Err.Resource,
		RequestID: uuid.NewString(),
	})
	if marshalErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write error response", zap.Error(err))
	}
}
