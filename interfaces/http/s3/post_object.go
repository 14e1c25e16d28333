package s3

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	apps3 "localaws/application/s3"
	apperrors "localaws/pkg/errors"
)

// maxPostMemory bounds the in-memory buffering of multipart form parsing.
const maxPostMemory = 32 << 20

// servePostObject handles the browser-form POST Object path: parse the
// multipart body into fields plus one file blob, substitute ${filename},
// store via PutObject, and shape the response per success_action_status.
func (h *Handler) servePostObject(b *binder, w http.ResponseWriter, r *http.Request) error {
	bucket, err := b.requireBucket()
	if err != nil {
		return err
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return apperrors.NewInvalidRequestError("Bucket POST must be of the enclosure-type multipart/form-data")
	}

	fields, fileData, fileContentType, fileName, err := parsePostForm(r.Body, params["boundary"])
	if err != nil {
		return err
	}

	key, ok := fields["key"]
	if !ok || key == "" {
		return apperrors.NewInvalidArgumentError(
			"Bucket POST must contain a field named 'key'.  If it is specified, please check the order of the fields.")
	}
	key = strings.ReplaceAll(key, "${filename}", fileName)

	metadata := map[string]string{}
	for name, value := range fields {
		if strings.HasPrefix(strings.ToLower(name), metadataPrefix) {
			metadata[name[len(metadataPrefix):]] = value
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	contentType := fields["Content-Type"]
	if contentType == "" {
		contentType = fileContentType
	}

	status := http.StatusNoContent
	if raw, ok := fields["success_action_status"]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil {
			status = parsed
		}
	}

	out, err := h.provider.PostObject(&apps3.PostObjectInput{
		Bucket:              bucket,
		Key:                 key,
		Body:                fileData,
		ContentType:         contentType,
		Metadata:            metadata,
		SuccessActionStatus: status,
	})
	if err != nil {
		return err
	}

	w.Header().Set("ETag", out.ETag)
	w.Header().Set("Location", out.Location)
	if out.Response != nil {
		return respondXML(w, out.Status, out.Response)
	}
	w.WriteHeader(out.Status)
	return nil
}

// parsePostForm reads a multipart body into text fields plus the single
// file part's data, content type and filename.
func parsePostForm(body io.Reader, boundary string) (map[string]string, []byte, string, string, error) {
	reader := multipart.NewReader(body, boundary)
	fields := map[string]string{}
	var fileData []byte
	fileContentType := ""
	fileName := ""
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, "", "", apperrors.NewInvalidRequestError("Malformed multipart body")
		}
		data, err := io.ReadAll(io.LimitReader(part, maxPostMemory))
		if err != nil {
			return nil, nil, "", "", apperrors.NewInvalidRequestError("Malformed multipart body")
		}
		if part.FileName() != "" || part.FormName() == "file" {
			fileData = data
			fileContentType = part.Header.Get("Content-Type")
			fileName = part.FileName()
		} else {
			fields[part.FormName()] = string(data)
		}
	}
	return fields, fileData, fileContentType, fileName, nil
}
