package protocol

import "strings"

// RegistrationResult answers the registration handshake. ConnectionID frames
// every later outbound message.
type RegistrationResult struct {
	ConnectionID      int32  `json:"connectionId"`
	ConnectionSuccess uint8  `json:"connectionSuccess"`
	IsReadOnly        uint8  `json:"isReadOnly"`
	ErrMsg            string `json:"errMsg"`
}

// UnregisteredConnectionID is the connection ID held before registration.
const UnregisteredConnectionID int32 = -1

func DefaultRegistrationResult() RegistrationResult {
	return RegistrationResult{ConnectionID: UnregisteredConnectionID}
}

func (RegistrationResult) InboundType() InboundType {
	return InboundRegistrationResult
}

func (r RegistrationResult) Succeeded() bool {
	return r.ConnectionSuccess > 0
}

func (r RegistrationResult) ReadOnly() bool {
	return r.IsReadOnly > 0
}

// ReadRegistrationResult reads the connection ID, the success and read-only
// flags, and treats every remaining byte as the error message. Invalid UTF-8
// in the message is replaced rather than failing the whole result.
func ReadRegistrationResult(r *Reader) (RegistrationResult, error) {
	result := RegistrationResult{
		ConnectionID:      r.Int32(),
		ConnectionSuccess: r.Uint8(),
		IsReadOnly:        r.Uint8(),
	}

	result.ErrMsg = strings.ToValidUTF8(string(r.Remaining()), "�")

	if err := r.Err(); err != nil {
		return RegistrationResult{}, err
	}

	return result, nil
}
