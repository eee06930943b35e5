package workflow

import (
	"encoding/json"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

const (
	MetadataControlRowsKey = "filasControl"
	MetadataRetentionsKey  = "retenciones"
)

// DecodeFinancial extrae la porción financiera de los metadatos libres del documento.
func DecodeFinancial(meta map[string]any) (domain.FinancialMetadata, error) {
	var fin domain.FinancialMetadata
	if raw, ok := meta[MetadataControlRowsKey]; ok && raw != nil {
		if err := remarshal(raw, &fin.ControlRows); err != nil {
			return fin, Wrap(KindValidation, "workflow.decode_financial", err)
		}
	}
	if raw, ok := meta[MetadataRetentionsKey]; ok && raw != nil {
		if err := remarshal(raw, &fin.Retentions); err != nil {
			return fin, Wrap(KindValidation, "workflow.decode_financial", err)
		}
	}
	return fin, nil
}

// EncodeFinancial devuelve una copia de meta con la porción financiera
// reemplazada. Las demás claves no se tocan.
func EncodeFinancial(meta map[string]any, fin domain.FinancialMetadata) (map[string]any, error) {
	out := make(map[string]any, len(meta)+2)
	for k, v := range meta {
		out[k] = v
	}
	if err := setPlain(out, MetadataControlRowsKey, fin.ControlRows); err != nil {
		return nil, err
	}
	if err := setPlain(out, MetadataRetentionsKey, fin.Retentions); err != nil {
		return nil, err
	}
	return out, nil
}

func setPlain[T any](out map[string]any, key string, v []T) error {
	if len(v) == 0 {
		delete(out, key)
		return nil
	}
	var plain any
	if err := remarshal(v, &plain); err != nil {
		return Wrap(KindValidation, "workflow.encode_financial", err)
	}
	out[key] = plain
	return nil
}

// remarshal convierte valores genéricos (map[string]any, []any) en tipos concretos y viceversa.
func remarshal(src, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
