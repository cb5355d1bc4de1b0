package reply

import (
	"bytes"

	"afsearch/internal/core/clientdata"
)

// scalar accepts a JSON string, number or boolean and keeps its text
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	*s = scalar(b)
	return nil
}

type wireResponse struct {
	Header   *wireHeader    `json:"header"`
	ReplySet []wireReplyset `json:"replySet"`
	Metadata []wireMetadata `json:"metadata"`
}

type wireParam struct {
	Name  string `json:"name"`
	Value scalar `json:"value"`
}

type wireHeader struct {
	Query struct {
		UserID     string      `json:"userId"`
		SessionID  string      `json:"sessionId"`
		Date       string      `json:"date"`
		TextQuery  string      `json:"textQuery"`
		QueryParam []wireParam `json:"queryParam"`
	} `json:"query"`
	Performance struct {
		DurationMs int `json:"durationMs"`
	} `json:"performance"`
	Error *struct {
		Message []string `json:"message"`
	} `json:"error"`
	OrchestrationInfo map[string]rawMessage `json:"orchestrationInfo"`
}

type wireMeta struct {
	URI                  string `json:"uri"`
	TotalItems           int    `json:"totalItems"`
	TotalItemsIsExact    bool   `json:"totalItemsIsExact"`
	PageItems            int    `json:"pageItems"`
	FirstPageItem        int    `json:"firstPageItem"`
	LastPageItem         int    `json:"lastPageItem"`
	DurationMs           int    `json:"durationMs"`
	Producer             string `json:"producer"`
	Cluster              string `json:"cluster"`
	TotalItemsInClusters int    `json:"totalItemsInClusters"`
	NbClusters           int    `json:"nbClusters"`
}

type wireReplyset struct {
	Meta   *wireMeta `json:"meta"`
	Facets *struct {
		Facet []wireFacet `json:"facet"`
	} `json:"facets"`
	Content *wireContent `json:"content"`
	Pager   *wirePager   `json:"pager"`
}

type wireContent struct {
	Reply   []wireReply   `json:"reply"`
	Cluster []wireCluster `json:"cluster"`
}

type wireCluster struct {
	ID                scalar      `json:"id"`
	TotalItems        int         `json:"totalItems"`
	TotalItemsIsExact bool        `json:"totalItemsIsExact"`
	PageItems         int         `json:"pageItems"`
	Reply             []wireReply `json:"reply"`
}

type wirePager struct {
	PreviousPage *int  `json:"previousPage"`
	NextPage     *int  `json:"nextPage"`
	CurrentPage  *int  `json:"currentPage"`
	Page         []int `json:"page"`
}

type wireLabel struct {
	Lang  string `json:"lang"`
	Label string `json:"label"`
}

type wireFacet struct {
	Kind     string      `json:"afs:t"`
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Layout   string      `json:"layout"`
	Labels   []wireLabel `json:"labels"`
	Sticky   *bool       `json:"sticky"`
	Filter   *bool       `json:"filter"`
	Node     []wireNode  `json:"node"`
	Interval []wireNode  `json:"interval"`
}

type wireNode struct {
	Key    scalar      `json:"key"`
	Labels []wireLabel `json:"labels"`
	Items  int         `json:"items"`
	Meta   []struct {
		Key   string `json:"key"`
		Value scalar `json:"value"`
	} `json:"meta"`
	Node []wireNode `json:"node"`
}

type wireReply struct {
	DocID     int        `json:"docId"`
	URI       string     `json:"uri"`
	Title     rawMessage `json:"title"`
	Abstract  rawMessage `json:"abstract"`
	Relevance struct {
		Rank int `json:"rank"`
	} `json:"relevance"`
	ClientData []clientdata.Raw `json:"clientData"`
	Geo        rawMessage       `json:"geo_reply_ext"`
	Suggestion []struct {
		Items rawMessage `json:"items"`
	} `json:"suggestion"`
	Concept *wireConcept `json:"concept"`
}

type wireConcept struct {
	Query struct {
		Items []struct {
			Kind string   `json:"afs:t"`
			Text string   `json:"text"`
			URI  []string `json:"uri"`
		} `json:"items"`
	} `json:"query"`
	Concepts struct {
		Concept []struct {
			URI      string `json:"uri"`
			Contents scalar `json:"contents"`
		} `json:"concept"`
	} `json:"concepts"`
}

type wireFacetInfo struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"`
	Layout string      `json:"layout"`
	Labels []wireLabel `json:"labels"`
	Sticky *bool       `json:"sticky"`
	Filter *bool       `json:"filter"`
}

type wireSetInfo struct {
	SetID         string          `json:"setId"`
	FacetInfos    []wireFacetInfo `json:"facetInfos"`
	ChildrenInfos []wireSetInfo   `json:"childrenInfos"`
}

type wireMetadata struct {
	URI  string `json:"uri"`
	Meta struct {
		Info struct {
			SearchFeedInfo struct {
				NbDocs   int           `json:"nbDocs"`
				SetInfos []wireSetInfo `json:"setInfos"`
			} `json:"searchFeedInfo"`
		} `json:"info"`
	} `json:"meta"`
}
