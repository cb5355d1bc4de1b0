package query

// IDSource supplies the user and session ids kept between requests, usually from cookies
type IDSource interface {
	UserID() string
	SessionID() string
}

// SetUserID sets the user id; a different user starts without a session
func (q Query) SetUserID(id string) Query {
	c := q.clone()
	if c.userID != id {
		c.sessionID = ""
	}
	c.userID = id
	return c
}

// SetSessionID sets the session id
func (q Query) SetSessionID(id string) Query {
	c := q.clone()
	c.sessionID = id
	return c
}

func (q Query) UserID() string    { return q.userID }
func (q Query) SessionID() string { return q.sessionID }

// InitializeUserAndSessionID copies the non-empty ids of src into the query
func (q Query) InitializeUserAndSessionID(src IDSource) Query {
	if src == nil {
		return q
	}
	c := q.clone()
	if id := src.UserID(); id != "" {
		c.userID = id
	}
	if id := src.SessionID(); id != "" {
		c.sessionID = id
	}
	return c
}

// UpdateUserAndSessionID fills the ids the query does not have yet, typically from a reply header
func (q Query) UpdateUserAndSessionID(userID, sessionID string) Query {
	c := q.clone()
	if c.userID == "" {
		c.userID = userID
	}
	if c.sessionID == "" {
		c.sessionID = sessionID
	}
	return c
}
