package chat

import (
	"github.com/elee1766/eventchat/src/session"
	"github.com/elee1766/eventchat/src/usage"
)

// GateListener keeps a usage gate bound to the session identity
func GateListener(gate *usage.Gate) session.Listener {
	return session.ListenerFunc(func(sess session.Context) {
		if sess.Authenticated {
			gate.MarkRegistered()
			return
		}
		gate.SetIdentity(sess.UserID)
	})
}
