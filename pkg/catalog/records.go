// Package catalog loads the application catalog and builds the route graph.
//
// A catalog is a list of applications and the connections between them, in
// the shape of the catalog database tables. It can be read from a YAML or
// TOML file or from PostgreSQL.
package catalog

// Category groups applications, e.g. "Core Banking"
type Category struct {
	ID   int32  `yaml:"category_id" koanf:"category_id" json:"category_id"`
	Name string `yaml:"category_name" koanf:"category_name" json:"category_name" validate:"max=200"`
}

// AppInfo describes one application. Inside a connection only AppID is
// required; a name there registers the application if the catalog does not
// list it.
type AppInfo struct {
	AppID    string   `yaml:"app_id" koanf:"app_id" json:"app_id" validate:"required,max=100"`
	Name     string   `yaml:"app_name" koanf:"app_name" json:"app_name" validate:"max=200"`
	Category Category `yaml:"app_category" koanf:"app_category" json:"app_category"`
	Level    uint8    `yaml:"app_level" koanf:"app_level" json:"app_level"`
}

// MethodType names the communication kind of a connection
type MethodType struct {
	ID   int32  `yaml:"com_method_type_id" koanf:"com_method_type_id" json:"com_method_type_id"`
	Name string `yaml:"com_method_name" koanf:"com_method_name" json:"com_method_name" validate:"required"`
}

// MethodInfo holds the kind specific details of a connection. Only the
// fields of the connection's kind are used.
type MethodInfo struct {
	ID           int32  `yaml:"com_method_id" koanf:"com_method_id" json:"com_method_id"`
	KafkaTopic   string `yaml:"kafka_topic" koanf:"kafka_topic" json:"kafka_topic,omitempty"`
	RESTMethod   string `yaml:"rest_api_http_method" koanf:"rest_api_http_method" json:"rest_api_http_method,omitempty"`
	RESTEndpoint string `yaml:"rest_api_http_uri" koanf:"rest_api_http_uri" json:"rest_api_http_uri,omitempty"`
	MQQueue      string `yaml:"mq_queue" koanf:"mq_queue" json:"mq_queue,omitempty"`
	GRPCService  string `yaml:"grpc_service" koanf:"grpc_service" json:"grpc_service,omitempty"`
	FilePath     string `yaml:"file_path" koanf:"file_path" json:"file_path,omitempty"`
	WSDLURL      string `yaml:"wsdl_url" koanf:"wsdl_url" json:"wsdl_url,omitempty"`
}

// Connection is a directed communication link between two applications
type Connection struct {
	Start      AppInfo    `yaml:"app_start" koanf:"app_start" json:"app_start"`
	End        AppInfo    `yaml:"app_end" koanf:"app_end" json:"app_end"`
	MethodType MethodType `yaml:"communication_method_type" koanf:"communication_method_type" json:"communication_method_type"`
	MethodInfo MethodInfo `yaml:"communication_method_info" koanf:"communication_method_info" json:"communication_method_info"`
	RouteNames []string   `yaml:"route_names" koanf:"route_names" json:"route_names" validate:"dive,required,max=100"`
}

// Catalog is the full content of a catalog source
type Catalog struct {
	Applications []AppInfo    `yaml:"applications" koanf:"applications" json:"applications" validate:"dive"`
	Connections  []Connection `yaml:"connections" koanf:"connections" json:"connections" validate:"dive"`
}
