package verbs

const (
	Get    = VerbValue("get")
	List   = VerbValue("list")
	Create = VerbValue("create")
	Update = VerbValue("update")
	Delete = VerbValue("delete")
	Export = VerbValue("export")
)

// VerbKey is the context key type of the running verb.
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// VerbValue names a verb (get, create, update, delete, etc)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}
