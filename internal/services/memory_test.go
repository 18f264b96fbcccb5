package services

type sentMail struct {
	to      string
	subject string
	body    string
}

// fakeMailer records outbound mail instead of delivering it.
type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
