package authorizenet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kevin07696/payment-orchestrator/internal/domain"
)

// The API prefixes its JSON bodies with a UTF-8 byte order mark.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(raw, utf8BOM), nil
}

func unmarshalResponse(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.WrapError(domain.ErrorCodeGatewayTransport,
			fmt.Sprintf("decode gateway response: %v", err), err)
	}
	return nil
}
