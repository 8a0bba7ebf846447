package middleware

import tele "gopkg.in/telebot.v4"

// PrivateOnly runs next only for updates from private chats. Other chats get
// onReject when set and are otherwise ignored.
func PrivateOnly(onReject tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if chat := c.Chat(); chat != nil && chat.Type == tele.ChatPrivate {
				return next(c)
			}
			if onReject != nil {
				return onReject(c)
			}
			return nil
		}
	}
}
