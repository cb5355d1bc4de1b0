package acp

import (
	"afsearch/internal/core/query"
	perr "afsearch/internal/platform/errors"

	"github.com/buger/jsonparser"
)

// Response holds the suggestions of every feed, in reply order.
// A single feed reply (a bare array) is exposed under the empty feed name
type Response struct {
	errMsg      string
	queryString string
	feeds       []string
	sets        map[string]*Replyset
}

// Parse decodes an acp reply.
// Feeds without suggestions are dropped but still provide the query string
func Parse(body []byte) (*Response, error) {
	data, typ, _, err := jsonparser.Get(body)
	if err != nil {
		return nil, perr.ReplyInvalid(err, body, "parse acp reply")
	}
	r := &Response{sets: map[string]*Replyset{}}
	switch typ {
	case jsonparser.Array:
		if err := r.add("", data); err != nil {
			return nil, err
		}
	case jsonparser.Object:
		if v, t, _, err := jsonparser.Get(data, "error"); err == nil {
			r.errMsg = string(v)
			if t == jsonparser.String {
				r.errMsg, _ = jsonparser.ParseString(v)
			}
			if r.errMsg == "" {
				r.errMsg = "acp error"
			}
			return r, nil
		}
		err := jsonparser.ObjectEach(data, func(k, v []byte, t jsonparser.ValueType, _ int) error {
			if t != jsonparser.Array {
				return perr.ReplyInvalid(nil, v, "acp feed "+string(k)+" is not an array")
			}
			feed, err := jsonparser.ParseString(k)
			if err != nil {
				return perr.ReplyInvalid(err, k, "acp feed name")
			}
			return r.add(feed, v)
		})
		if err != nil {
			if _, ok := perr.As(err); ok {
				return nil, err
			}
			return nil, perr.ReplyInvalid(err, body, "parse acp reply")
		}
	default:
		return nil, perr.ReplyInvalid(nil, body, "acp reply is neither an array nor an object")
	}
	if r.queryString == "" && len(r.feeds) > 0 {
		r.queryString = r.sets[r.feeds[0]].queryString
	}
	return r, nil
}

func (r *Response) add(feed string, data []byte) error {
	rs, err := newReplyset(feed, data)
	if err != nil {
		return err
	}
	if len(rs.replies) == 0 {
		r.queryString = rs.queryString
		return nil
	}
	if _, dup := r.sets[feed]; !dup {
		r.feeds = append(r.feeds, feed)
	}
	r.sets[feed] = rs
	return nil
}

func (r *Response) InError() bool        { return r.errMsg != "" }
func (r *Response) ErrorMessage() string { return r.errMsg }

// QueryString is the text the suggestions complete
func (r *Response) QueryString() string { return r.queryString }

func (r *Response) HasReplyset() bool { return !r.InError() && len(r.feeds) > 0 }
func (r *Response) Feeds() []string   { return append([]string(nil), r.feeds...) }

// Replysets returns the feeds with suggestions in reply order
func (r *Response) Replysets() []*Replyset {
	out := make([]*Replyset, len(r.feeds))
	for i, f := range r.feeds {
		out[i] = r.sets[f]
	}
	return out
}

// Replyset returns the suggestions of feed; the empty name selects a single feed reply
func (r *Response) Replyset(feed string) (*Replyset, error) {
	if rs, ok := r.sets[feed]; ok {
		return rs, nil
	}
	if feed == "" {
		return nil, perr.NotFoundf("no suggestion available")
	}
	return nil, perr.WithField(perr.NotFoundf("no suggestion available for feed %q", feed), "feed")
}

// Replyset is the suggestion list of one feed
type Replyset struct {
	feed        string
	queryString string
	replies     []Reply
}

// newReplyset reads [query, [suggestions...]] or [query, [suggestions...], [options...]]
func newReplyset(feed string, data []byte) (*Replyset, error) {
	var parts [][]byte
	var kinds []jsonparser.ValueType
	_, err := jsonparser.ArrayEach(data, func(v []byte, t jsonparser.ValueType, _ int, err error) {
		if err == nil {
			parts = append(parts, v)
			kinds = append(kinds, t)
		}
	})
	if err != nil || len(parts) < 2 || len(parts) > 3 {
		return nil, perr.ReplyInvalid(err, data, "unmanaged acp suggestion format")
	}
	if kinds[0] != jsonparser.String || kinds[1] != jsonparser.Array {
		return nil, perr.ReplyInvalid(nil, data, "unmanaged acp suggestion format")
	}
	qs, err := jsonparser.ParseString(parts[0])
	if err != nil {
		return nil, perr.ReplyInvalid(err, parts[0], "acp query string")
	}
	rs := &Replyset{feed: feed, queryString: qs}

	values, err := stringsOf(parts[1])
	if err != nil {
		return nil, err
	}
	var opts [][]Option
	if len(parts) == 3 {
		if kinds[2] != jsonparser.Array {
			return nil, perr.ReplyInvalid(nil, parts[2], "acp options are not an array")
		}
		if opts, err = optionsOf(parts[2]); err != nil {
			return nil, err
		}
		if len(opts) != len(values) {
			return nil, perr.ReplyInvalid(nil, data, "acp options do not match the suggestions")
		}
	}
	for i, v := range values {
		r := Reply{value: v}
		if opts != nil {
			r.options = opts[i]
		}
		rs.replies = append(rs.replies, r)
	}
	return rs, nil
}

func stringsOf(data []byte) ([]string, error) {
	var out []string
	var bad error
	_, err := jsonparser.ArrayEach(data, func(v []byte, t jsonparser.ValueType, _ int, _ error) {
		if bad != nil {
			return
		}
		if t != jsonparser.String {
			bad = perr.ReplyInvalid(nil, v, "acp suggestion is not a string")
			return
		}
		s, err := jsonparser.ParseString(v)
		if err != nil {
			bad = perr.ReplyInvalid(err, v, "acp suggestion")
			return
		}
		out = append(out, s)
	})
	if bad != nil {
		return nil, bad
	}
	if err != nil {
		return nil, perr.ReplyInvalid(err, data, "acp suggestions")
	}
	return out, nil
}

func optionsOf(data []byte) ([][]Option, error) {
	var out [][]Option
	var bad error
	_, err := jsonparser.ArrayEach(data, func(v []byte, t jsonparser.ValueType, _ int, _ error) {
		if bad != nil {
			return
		}
		switch t {
		case jsonparser.Null:
			out = append(out, nil)
			return
		case jsonparser.Object:
		default:
			bad = perr.ReplyInvalid(nil, v, "acp option set is not an object")
			return
		}
		var set []Option
		err := jsonparser.ObjectEach(v, func(k, val []byte, vt jsonparser.ValueType, _ int) error {
			name, err := jsonparser.ParseString(k)
			if err != nil {
				return perr.ReplyInvalid(err, k, "acp option name")
			}
			value := string(val)
			if vt == jsonparser.String {
				if value, err = jsonparser.ParseString(val); err != nil {
					return perr.ReplyInvalid(err, val, "acp option value")
				}
			}
			set = append(set, Option{Name: name, Value: value})
			return nil
		})
		if err != nil {
			if _, ok := perr.As(err); !ok {
				err = perr.ReplyInvalid(err, v, "acp option set")
			}
			bad = err
			return
		}
		out = append(out, set)
	})
	if bad != nil {
		return nil, bad
	}
	if err != nil {
		return nil, perr.ReplyInvalid(err, data, "acp options")
	}
	return out, nil
}

func (rs *Replyset) Feed() string { return rs.feed }

// QueryString is the text completed by this feed
func (rs *Replyset) QueryString() string { return rs.queryString }

func (rs *Replyset) HasReply() bool   { return len(rs.replies) > 0 }
func (rs *Replyset) Len() int         { return len(rs.replies) }
func (rs *Replyset) Replies() []Reply { return append([]Reply(nil), rs.replies...) }

// Option is one named datum attached to a suggestion; non string values keep their JSON form
type Option struct {
	Name  string
	Value string
}

// Reply is one suggestion
type Reply struct {
	value   string
	options []Option
}

func (r Reply) Value() string { return r.value }

// HasOption reports whether name is attached; the empty name asks for any option
func (r Reply) HasOption(name string) bool {
	if name == "" {
		return len(r.options) > 0
	}
	_, ok := r.find(name)
	return ok
}

// Option returns the value attached under name
func (r Reply) Option(name string) (string, error) {
	if v, ok := r.find(name); ok {
		return v, nil
	}
	return "", perr.WithField(perr.NotFoundf("no option %q for suggestion %q", name, r.value), "name")
}

func (r Reply) Options() []Option { return append([]Option(nil), r.options...) }

func (r Reply) find(name string) (string, bool) {
	for _, o := range r.options {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}

// SearchQuery returns base searching the suggestion, with the ACP origin
func (r Reply) SearchQuery(base query.Query) query.Query {
	q := base.SetQuery(r.value)
	q, _ = q.SetFrom(query.OriginACP)
	return q
}
