package filesystem

import (
	"encoding/base64"
	"strings"
)

// DataURIPrefix is the only data URI form accepted for binary uploads
const DataURIPrefix = "data:application/octet-stream;base64,"

// DecodeDataURI decodes a base64 data URI carrying an upload
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return nil, newError(KindBadRequest, CodeBadRequest,
			`invalid fileData format, must be a data URI string starting with "`+DataURIPrefix+`"`, "")
	}
	encoded := strings.TrimSpace(uri[len(DataURIPrefix):])

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Accept unpadded payloads too
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if rawErr != nil {
			e := newError(KindBadRequest, CodeBadRequest, "invalid base64 in fileData", "")
			e.Err = err
			return nil, e
		}
		data = raw
	}
	return data, nil
}
