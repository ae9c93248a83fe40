package bison

// DataOwnerCode identifies the operator that owns a BISON record.
type DataOwnerCode string

const (
	DataOwnerARR        DataOwnerCode = "ARR"
	DataOwnerVTN        DataOwnerCode = "VTN"
	DataOwnerCXX        DataOwnerCode = "CXX"
	DataOwnerGVB        DataOwnerCode = "GVB"
	DataOwnerHTM        DataOwnerCode = "HTM"
	DataOwnerNS         DataOwnerCode = "NS"
	DataOwnerRET        DataOwnerCode = "RET"
	DataOwnerSYNTUS     DataOwnerCode = "SYNTUS"
	DataOwnerQBUZZ      DataOwnerCode = "QBUZZ"
	DataOwnerTCR        DataOwnerCode = "TCR"
	DataOwnerEBS        DataOwnerCode = "EBS"
	DataOwnerGOVI       DataOwnerCode = "GOVI"
	DataOwnerRIG        DataOwnerCode = "RIG"
	DataOwnerDRECHTSTED DataOwnerCode = "DRECHTSTED"
	DataOwnerKEOLIS     DataOwnerCode = "KEOLIS"
	DataOwnerOVERAL     DataOwnerCode = "OVERAL"
)

func (d DataOwnerCode) String() string {
	return string(d)
}
