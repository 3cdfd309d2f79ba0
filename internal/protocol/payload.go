package protocol

// LoginPayload is the decoded ACC_LOGIN / ACC_CREATE request body.
type LoginPayload struct {
	Username string
	Password string
}

// EditPayload is the decoded ACC_EDIT request body.
type EditPayload struct {
	NewPassword string
}

// ChatPayload is the decoded CHT_SEND request body.
type ChatPayload struct {
	Message string
}

// DecodeLoginPayload decodes the {STRING username, STRING password} body
// shared by ACC_LOGIN and ACC_CREATE.
func DecodeLoginPayload(buf []byte) (LoginPayload, error) {
	r := newFieldReader(buf)
	username, err := r.expectString()
	if err != nil {
		return LoginPayload{}, err
	}
	password, err := r.expectString()
	if err != nil {
		return LoginPayload{}, err
	}
	return LoginPayload{Username: username, Password: password}, nil
}

// DecodeEditPayload decodes the {STRING new_password} ACC_EDIT body.
func DecodeEditPayload(buf []byte) (EditPayload, error) {
	r := newFieldReader(buf)
	password, err := r.expectString()
	if err != nil {
		return EditPayload{}, err
	}
	return EditPayload{NewPassword: password}, nil
}

// DecodeChatPayload decodes the {STRING message} CHT_SEND body.
func DecodeChatPayload(buf []byte) (ChatPayload, error) {
	r := newFieldReader(buf)
	message, err := r.expectString()
	if err != nil {
		return ChatPayload{}, err
	}
	return ChatPayload{Message: message}, nil
}
