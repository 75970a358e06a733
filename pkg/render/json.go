package render

import (
	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// LinkView is the JSON form of a communication link. Only the fields of
// the link's kind are set.
type LinkView struct {
	Type        string   `json:"type"` // raw kind label, e.g. "RESTAPI"
	Label       string   `json:"label"`
	Method      string   `json:"method,omitempty"`
	Endpoint    string   `json:"endpoint,omitempty"`
	QueueName   string   `json:"queueName,omitempty"`
	Topic       string   `json:"topic,omitempty"`
	ServiceName string   `json:"serviceName,omitempty"`
	FilePath    string   `json:"filePath,omitempty"`
	WSDLURL     string   `json:"wsdlUrl,omitempty"`
	RouteTags   []string `json:"routeTags"`
}

// HopView is one hop of a route
type HopView struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Link LinkView `json:"link"`
}

// RouteView is one discovered route
type RouteView struct {
	Applications []string  `json:"applications"`
	Hops         []HopView `json:"hops"`
}

// NewLinkView converts a link into its JSON form
func NewLinkView(link model.Link) LinkView {
	v := LinkView{
		Type:      string(link.Kind()),
		Label:     Detail(link),
		RouteTags: link.Tags().Names(),
	}

	switch l := link.(type) {
	case model.REST:
		v.Method = l.Method
		v.Endpoint = l.Endpoint
	case model.MQ:
		v.QueueName = l.QueueName
	case model.Kafka:
		v.Topic = l.Topic
	case model.GRPC:
		v.ServiceName = l.ServiceName
	case model.FileTransfer:
		v.FilePath = l.FilePath
	case model.SOAP:
		v.WSDLURL = l.WSDLURL
	}
	return v
}

// Routes converts paths into their JSON form, keeping path order
func Routes(g *model.Graph, paths []model.Path) []RouteView {
	views := make([]RouteView, 0, len(paths))
	for _, path := range paths {
		view := RouteView{
			Applications: make([]string, 0, len(path)+1),
			Hops:         make([]HopView, 0, len(path)),
		}
		for _, app := range path.Applications() {
			view.Applications = append(view.Applications, g.Name(app))
		}
		for _, hop := range path {
			view.Hops = append(view.Hops, HopView{
				From: g.Name(hop.From),
				To:   g.Name(hop.To),
				Link: NewLinkView(hop.Link),
			})
		}
		views = append(views, view)
	}
	return views
}
