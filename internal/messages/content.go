package messagesdomain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ContentKind string

const (
	KindText      ContentKind = "text"
	KindAgreement ContentKind = "agreement"
)

// Content is the message payload: plain text, or a reference to a swap
// agreement under negotiation. The wire historically carried either a bare
// JSON string or an ad hoc JSON object; both forms decode into this union
// at the boundary, everything past it works with typed fields only.
type Content struct {
	Kind ContentKind `json:"kind"`

	Text string `json:"text,omitempty"`

	AgreementID string `json:"agreement_id,omitempty"`
	Note        string `json:"note,omitempty"`
}

func TextContent(text string) Content {
	return Content{Kind: KindText, Text: text}
}

func AgreementContent(agreementID, note string) Content {
	return Content{Kind: KindAgreement, AgreementID: agreementID, Note: note}
}

// Empty reports whether the content carries nothing worth sending.
func (c Content) Empty() bool {
	switch c.Kind {
	case KindText:
		return strings.TrimSpace(c.Text) == ""
	case KindAgreement:
		return strings.TrimSpace(c.AgreementID) == ""
	}
	return true
}

func (c *Content) UnmarshalJSON(data []byte) error {
	// Legacy clients send the text body as a bare JSON string.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = TextContent(s)
		return nil
	}

	type alias Content
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}

	switch a.Kind {
	case KindText, KindAgreement:
	case "":
		// Older structured payloads carried no discriminator; an agreement id
		// marks them as agreement references, anything else is text.
		if a.AgreementID != "" {
			a.Kind = KindAgreement
		} else {
			a.Kind = KindText
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownContentKind, a.Kind)
	}

	*c = Content(a)
	return nil
}

// EncodeBody serializes the kind-specific fields for storage.
func (c Content) EncodeBody() (string, error) {
	switch c.Kind {
	case KindText:
		return c.Text, nil
	case KindAgreement:
		b, err := json.Marshal(struct {
			AgreementID string `json:"agreement_id"`
			Note        string `json:"note,omitempty"`
		}{c.AgreementID, c.Note})
		if err != nil {
			return "", fmt.Errorf("encode agreement body: %w", err)
		}
		return string(b), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentKind, c.Kind)
}

// DecodeBody is the inverse of EncodeBody for rows read back from storage.
func DecodeBody(kind, body string) (Content, error) {
	switch ContentKind(kind) {
	case KindText:
		return TextContent(body), nil
	case KindAgreement:
		var v struct {
			AgreementID string `json:"agreement_id"`
			Note        string `json:"note"`
		}
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return Content{}, fmt.Errorf("decode agreement body: %w", err)
		}
		return AgreementContent(v.AgreementID, v.Note), nil
	}
	return Content{}, fmt.Errorf("%w: %q", ErrUnknownContentKind, kind)
}
