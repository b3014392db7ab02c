package scheme

// Builtin descriptors, mirroring the GDC v1.0.0 scheme family.  The basic
// scheme is the root; the public and protected schemes extend it.  Extra
// descriptors can be layered on with Registry.Add or Registry.AddFile.

// GdcBasic is the annotation spec of the builtin GDC v1.0.0 basic scheme.
const GdcBasic = "gdc-1.0.0"

// GdcPublic is the annotation spec of the builtin GDC v1.0.0 public scheme.
const GdcPublic = "gdc-1.0.0-public"

// GdcProtected is the annotation spec of the builtin GDC v1.0.0 protected
// scheme.
const GdcProtected = "gdc-1.0.0-protected"

func builtinDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			Version:        "gdc-1.0.0",
			AnnotationSpec: GdcBasic,
			Columns: [][]string{
				{"Hugo_Symbol", "String", "HUGO symbol for the gene"},
				{"Entrez_Gene_Id", "ZeroBasedInteger", "Entrez gene ID; 0 if no gene"},
				{"Center", "SequenceOfStrings", "One or more genome sequencing centers"},
				{"NCBI_Build", "String", "Reference genome build"},
				{"Chromosome", "String", "Chromosome of the variant"},
				{"Start_Position", "OneBasedInteger", "Lowest numeric position of the variant"},
				{"End_Position", "OneBasedInteger", "Highest numeric position of the variant"},
				{"Strand", "Strand", "Genomic strand of the reported allele"},
				{"Variant_Classification", "VariantClassification", "Translational effect of the variant"},
				{"Variant_Type", "VariantType", "Type of mutation"},
				{"Reference_Allele", "String", "Plus-strand reference allele"},
				{"Tumor_Seq_Allele1", "String", "Primary tumor allele 1"},
				{"Tumor_Seq_Allele2", "String", "Primary tumor allele 2"},
				{"dbSNP_RS", "SequenceOfStrings", "rs-IDs, or novel"},
				{"Tumor_Sample_Barcode", "String", "Tumor sample aliquot barcode"},
				{"Matched_Norm_Sample_Barcode", "String", "Matched normal aliquot barcode"},
				{"Mutation_Status", "MutationStatus", "Somatic or germline status"},
				{"Sequencer", "SequenceOfStrings", "Instruments used"},
				{"Tumor_Sample_UUID", "UUID", "Tumor sample aliquot UUID"},
				{"Matched_Norm_Sample_UUID", "UUID", "Matched normal aliquot UUID"},
			},
		},
		{
			Version:        "gdc-1.0.0",
			AnnotationSpec: GdcProtected,
			Extends:        GdcBasic,
			Columns: [][]string{
				{"t_depth", "NullableZeroBasedInteger", "Read depth in tumor"},
				{"t_ref_count", "NullableZeroBasedInteger", "Reference allele depth in tumor"},
				{"t_alt_count", "NullableZeroBasedInteger", "Alternate allele depth in tumor"},
				{"n_depth", "NullableZeroBasedInteger", "Read depth in normal"},
				{"n_ref_count", "NullableZeroBasedInteger", "Reference allele depth in normal"},
				{"n_alt_count", "NullableZeroBasedInteger", "Alternate allele depth in normal"},
				{"Validation_Status", "ValidationStatus", "Secondary-technology validation status"},
				{"Verification_Status", "VerificationStatus", "Orthogonal-technology verification status"},
				{"Somatic", "NullableYesOrNo", "Called somatic by at least two callers"},
			},
		},
		{
			Version:        "gdc-1.0.0",
			AnnotationSpec: GdcPublic,
			Extends:        GdcProtected,
			Columns: [][]string{
				{"FILTER", "SequenceOfStrings", "Caller filters applied"},
				{"GDC_FILTER", "SequenceOfStrings", "GDC filters applied"},
			},
			Filtered: []string{
				"n_ref_count",
				"n_alt_count",
				"Validation_Status",
				"Verification_Status",
			},
		},
	}
}
