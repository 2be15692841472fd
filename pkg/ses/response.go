package ses

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/yossi-weinberger/ten10/pkg/email"
)

// v2Response is the JSON response of the v2 send endpoint.
type v2Response struct {
	MessageId string `json:"MessageId"`
}

// parseMessageID extracts the provider message ID using the parser that
// matches the configured API version.
func parseMessageID(version APIVersion, body []byte) (string, error) {
	switch version {
	case APIVersionV2:
		var resp v2Response
		if err := json.Unmarshal(body, &resp); err != nil || resp.MessageId == "" {
			return "", fmt.Errorf("%w: %s", ErrUnexpectedResponse, body)
		}
		return resp.MessageId, nil
	case APIVersionQuery:
		id, ok := extractXMLElement(body, "MessageId")
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnexpectedResponse, body)
		}
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAPIVersion, string(version))
	}
}

// extractXMLElement scans the legacy XML response for the first element
// with the given local name and returns its character data. A token
// scan keeps the extraction independent of the surrounding response
// wrapper (SendEmailResponse vs SendRawEmailResponse).
func extractXMLElement(body []byte, name string) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}
		var value string
		if err := dec.DecodeElement(&value, &start); err != nil {
			return "", false
		}
		return value, true
	}
}

// v2RawPayload wraps a raw MIME stream in the v2 JSON envelope.
func v2RawPayload(msg email.Message, raw []byte) ([]byte, error) {
	payload := struct {
		FromEmailAddress string `json:"FromEmailAddress"`
		Destination      struct {
			ToAddresses []string `json:"ToAddresses"`
			CcAddresses []string `json:"CcAddresses,omitempty"`
		} `json:"Destination"`
		Content struct {
			Raw struct {
				Data string `json:"Data"`
			} `json:"Raw"`
		} `json:"Content"`
	}{FromEmailAddress: msg.From}
	payload.Destination.ToAddresses = msg.To
	payload.Destination.CcAddresses = msg.CC
	payload.Content.Raw.Data = base64.StdEncoding.EncodeToString(raw)

	return json.Marshal(payload)
}
