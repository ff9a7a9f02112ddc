package daemon

const (
	homeFlag      = "home"
	forceFlag     = "force"
	namespaceFlag = "namespace"
	extraDataFlag = "extra-data"
	valueFlag     = "value"
	proofFlag     = "proof"
)
