package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
)

// Notification text comes from arbitrary phone apps and is rendered by the
// dashboard web view, so everything leaving the gateway is run through the
// policy.
var sanitizer *bluemonday.Policy

func init() {
	sanitizer = bluemonday.StrictPolicy()
}

func sanitizedJSONResponse(w http.ResponseWriter, i interface{}) {
	ret, err := marshalAndSanitizeJSON(i)
	if err != nil {
		http.Error(w, wrapError(err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, string(ret))
}

func marshalAndSanitizeJSON(i interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		return nil, err
	}
	return sanitizeJSON(out)
}

func sanitizeJSON(s []byte) ([]byte, error) {
	d := json.NewDecoder(bytes.NewReader(s))
	d.UseNumber()

	var i interface{}
	err := d.Decode(&i)
	if err != nil {
		return nil, err
	}
	i = sanitize(i)

	return json.MarshalIndent(i, "", "    ")
}

func sanitize(data interface{}) interface{} {
	switch d := data.(type) {
	case string:
		return sanitizer.Sanitize(d)
	case map[string]interface{}:
		for k, v := range d {
			if v == nil {
				delete(d, k)
				continue
			}
			d[k] = sanitize(v)
		}
	case []interface{}:
		for i, v := range d {
			d[i] = sanitize(v)
		}
	}
	return data
}
