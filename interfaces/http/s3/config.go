package s3

import (
	"net/http"

	apps3 "localaws/application/s3"
	s3model "localaws/domain/s3"
)

// dispatchConfig covers the bucket configuration slots and the per-object
// sub-resources. Two generic helpers carry the bulk: every GET serializes
// a document, every PUT parses one, every DELETE clears the slot.
func (h *Handler) dispatchConfig(op Operation, b *binder, w http.ResponseWriter) error {
	bucket, err := b.requireBucket()
	if err != nil {
		return err
	}

	switch op {
	case OpGetBucketVersioning:
		return getConfig(w, bucket, h.provider.GetBucketVersioning)
	case OpPutBucketVersioning:
		return putConfig(b, w, bucket, h.provider.PutBucketVersioning)
	case OpGetBucketEncryption:
		return getConfig(w, bucket, h.provider.GetBucketEncryption)
	case OpPutBucketEncryption:
		return putConfig(b, w, bucket, h.provider.PutBucketEncryption)
	case OpDeleteBucketEncryption:
		return respondVoid(w, h.provider.DeleteBucketEncryption(bucket))
	case OpGetBucketCors:
		return getConfig(w, bucket, h.provider.GetBucketCors)
	case OpPutBucketCors:
		return putConfig(b, w, bucket, h.provider.PutBucketCors)
	case OpDeleteBucketCors:
		return respondVoid(w, h.provider.DeleteBucketCors(bucket))
	case OpGetBucketLifecycle:
		return getConfig(w, bucket, h.provider.GetBucketLifecycle)
	case OpPutBucketLifecycle:
		return putConfig(b, w, bucket, h.provider.PutBucketLifecycle)
	case OpDeleteBucketLifecycle:
		return respondVoid(w, h.provider.DeleteBucketLifecycle(bucket))
	case OpGetBucketTagging:
		return getConfig(w, bucket, h.provider.GetBucketTagging)
	case OpPutBucketTagging:
		return putConfig(b, w, bucket, h.provider.PutBucketTagging)
	case OpDeleteBucketTagging:
		return respondVoid(w, h.provider.DeleteBucketTagging(bucket))
	case OpGetBucketNotification:
		return getConfig(w, bucket, h.provider.GetBucketNotification)
	case OpPutBucketNotification:
		return putConfig(b, w, bucket, h.provider.PutBucketNotification)
	case OpGetBucketLogging:
		return getConfig(w, bucket, h.provider.GetBucketLogging)
	case OpPutBucketLogging:
		return putConfig(b, w, bucket, h.provider.PutBucketLogging)
	case OpGetPublicAccessBlock:
		return getConfig(w, bucket, h.provider.GetPublicAccessBlock)
	case OpPutPublicAccessBlock:
		return putConfig(b, w, bucket, h.provider.PutPublicAccessBlock)
	case OpDeletePublicAccessBlock:
		return respondVoid(w, h.provider.DeletePublicAccessBlock(bucket))
	case OpGetBucketOwnershipControls:
		return getConfig(w, bucket, h.provider.GetBucketOwnershipControls)
	case OpPutBucketOwnershipControls:
		return putConfig(b, w, bucket, h.provider.PutBucketOwnershipControls)
	case OpDeleteBucketOwnershipControls:
		return respondVoid(w, h.provider.DeleteBucketOwnershipControls(bucket))
	case OpGetObjectLockConfiguration:
		return getConfig(w, bucket, h.provider.GetObjectLockConfiguration)
	case OpPutObjectLockConfiguration:
		return putConfig(b, w, bucket, h.provider.PutObjectLockConfiguration)
	case OpGetBucketAccelerate:
		return getConfig(w, bucket, h.provider.GetBucketAccelerate)
	case OpPutBucketAccelerate:
		return putConfig(b, w, bucket, h.provider.PutBucketAccelerate)
	case OpGetBucketRequestPayment:
		return getConfig(w, bucket, h.provider.GetBucketRequestPayment)
	case OpPutBucketRequestPayment:
		return putConfig(b, w, bucket, h.provider.PutBucketRequestPayment)
	case OpGetBucketWebsite:
		return getConfig(w, bucket, h.provider.GetBucketWebsite)
	case OpPutBucketWebsite:
		return putConfig(b, w, bucket, h.provider.PutBucketWebsite)
	case OpDeleteBucketWebsite:
		return respondVoid(w, h.provider.DeleteBucketWebsite(bucket))
	case OpGetBucketAcl:
		return getConfig(w, bucket, h.provider.GetBucketAcl)
	case OpPutBucketAcl:
		return h.servePutBucketAcl(b, w, bucket)
	case OpGetBucketPolicy:
		policy, err := h.provider.GetBucketPolicy(bucket)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, err = w.Write([]byte(policy))
		return err
	case OpPutBucketPolicy:
		body, err := b.readBody()
		if err != nil {
			return err
		}
		if err := h.provider.PutBucketPolicy(bucket, string(body)); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	case OpDeleteBucketPolicy:
		return respondVoid(w, h.provider.DeleteBucketPolicy(bucket))

	case OpGetObjectTagging:
		return h.serveObjectTagging(op, b, w)
	case OpPutObjectTagging:
		return h.serveObjectTagging(op, b, w)
	case OpDeleteObjectTagging:
		return h.serveObjectTagging(op, b, w)
	case OpGetObjectAcl, OpPutObjectAcl:
		return h.serveObjectAcl(op, b, w)
	case OpGetObjectRetention, OpPutObjectRetention:
		return h.serveObjectRetention(op, b, w)
	case OpGetObjectLegalHold, OpPutObjectLegalHold:
		return h.serveObjectLegalHold(op, b, w)
	}
	w.WriteHeader(http.StatusNotImplemented)
	return nil
}

// getConfig serializes a configuration document read.
func getConfig[T any](w http.ResponseWriter, bucket string, read func(string) (*T, error)) error {
	doc, err := read(bucket)
	if err != nil {
		return err
	}
	return respondXML(w, http.StatusOK, doc)
}

// putConfig parses a configuration document and stores it.
func putConfig[T any](b *binder, w http.ResponseWriter, bucket string, write func(string, *T) error) error {
	doc, err := parseXMLBody[T](b)
	if err != nil {
		return err
	}
	if err := write(bucket, doc); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *Handler) servePutBucketAcl(b *binder, w http.ResponseWriter, bucket string) error {
	// A canned ACL header replaces the body document.
	var acl *s3model.AccessControlPolicy
	if b.headerStr("x-amz-acl") == "" {
		parsed, err := parseXMLBody[s3model.AccessControlPolicy](b)
		if err != nil {
			return err
		}
		acl = parsed
	}
	if err := h.provider.PutBucketAcl(bucket, acl); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *Handler) objectSubresourceInput(b *binder) (string, string, string, error) {
	bucket, err := b.requireBucket()
	if err != nil {
		return "", "", "", err
	}
	key, err := b.requireKey()
	if err != nil {
		return "", "", "", err
	}
	return bucket, key, b.queryStr("versionId"), nil
}

func (h *Handler) serveObjectTagging(op Operation, b *binder, w http.ResponseWriter) error {
	bucket, key, versionID, err := h.objectSubresourceInput(b)
	if err != nil {
		return err
	}
	input := &apps3.ObjectTaggingInput{Bucket: bucket, Key: key, VersionID: versionID}
	switch op {
	case OpGetObjectTagging:
		doc, err := h.provider.GetObjectTagging(input)
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, doc)
	case OpPutObjectTagging:
		doc, err := parseXMLBody[s3model.Tagging](b)
		if err != nil {
			return err
		}
		input.Tagging = doc
		if err := h.provider.PutObjectTagging(input); err != nil {
			return err
		}
		w.WriteHeader(http.StatusOK)
		return nil
	default:
		return respondVoid(w, h.provider.DeleteObjectTagging(input))
	}
}

func (h *Handler) serveObjectAcl(op Operation, b *binder, w http.ResponseWriter) error {
	bucket, key, versionID, err := h.objectSubresourceInput(b)
	if err != nil {
		return err
	}
	input := &apps3.ObjectACLInput{Bucket: bucket, Key: key, VersionID: versionID}
	if op == OpGetObjectAcl {
		doc, err := h.provider.GetObjectAcl(input)
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, doc)
	}
	input.CannedACL = b.headerStr("x-amz-acl")
	if input.CannedACL == "" {
		parsed, err := parseXMLBody[s3model.AccessControlPolicy](b)
		if err != nil {
			return err
		}
		input.ACL = parsed
	}
	if err := h.provider.PutObjectAcl(input); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *Handler) serveObjectRetention(op Operation, b *binder, w http.ResponseWriter) error {
	bucket, key, versionID, err := h.objectSubresourceInput(b)
	if err != nil {
		return err
	}
	input := &apps3.ObjectRetentionInput{Bucket: bucket, Key: key, VersionID: versionID}
	if op == OpGetObjectRetention {
		doc, err := h.provider.GetObjectRetention(input)
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, doc)
	}
	doc, err := parseXMLBody[s3model.Retention](b)
	if err != nil {
		return err
	}
	input.Retention = doc
	if err := h.provider.PutObjectRetention(input); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (h *Handler) serveObjectLegalHold(op Operation, b *binder, w http.ResponseWriter) error {
	bucket, key, versionID, err := h.objectSubresourceInput(b)
	if err != nil {
		return err
	}
	input := &apps3.ObjectLegalHoldInput{Bucket: bucket, Key: key, VersionID: versionID}
	if op == OpGetObjectLegalHold {
		doc, err := h.provider.GetObjectLegalHold(input)
		if err != nil {
			return err
		}
		return respondXML(w, http.StatusOK, doc)
	}
	doc, err := parseXMLBody[s3model.LegalHold](b)
	if err != nil {
		return err
	}
	input.LegalHold = doc
	if err := h.provider.PutObjectLegalHold(input); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}
