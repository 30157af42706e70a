// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

// PennTreebank returns the Penn Treebank tag set used by English taggers.
func PennTreebank() *TagSet {
	return mustTagSet(NewTagSet("penn", "en"), []PosTag{
		NewPosTag("CC", CoordinatingConjunction),
		NewPosTag("CD", CardinalNumber),
		NewCategoryTag("DT", Determiner),
		NewPosTag("EX", ExistentialParticle),
		NewPosTag("FW", ForeignWord),
		NewPosTag("IN", Preposition, SubordinatingConjunction),
		NewCategoryTag("JJ", Adjective),
		NewPosTag("JJR", ComparativeAdjective),
		NewPosTag("JJS", SuperlativeAdjective),
		NewCategoryTag("LS", Residual),
		NewPosTag("MD", ModalVerb),
		NewPosTag("NN", CommonNoun),
		NewPosTag("NNS", CommonNoun),
		NewPosTag("NNP", ProperNoun),
		NewPosTag("NNPS", ProperNoun),
		NewPosTag("PDT", Predeterminer),
		NewPosTag("POS", PossessiveMarker),
		NewPosTag("PRP", PersonalPronoun),
		NewPosTag("PRP$", PossessivePronoun),
		NewCategoryTag("RB", Adverb),
		NewPosTag("RBR", ComparativeAdverb),
		NewPosTag("RBS", SuperlativeAdverb),
		NewPosTag("RP", Particle),
		NewPosTag("SYM", Symbol),
		NewPosTag("TO", InfinitiveMarker),
		NewCategoryTag("UH", Interjection),
		NewPosTag("VB", Infinitive),
		NewPosTag("VBD", PastTenseVerb),
		NewPosTag("VBG", Gerund, PresentParticiple),
		NewPosTag("VBN", PastParticiple),
		NewPosTag("VBP", PresentTenseVerb),
		NewPosTag("VBZ", PresentTenseVerb),
		NewPosTag("WDT", InterrogativeDeterminer),
		NewPosTag("WP", InterrogativePronoun),
		NewPosTag("WP$", InterrogativePronoun, PossessivePronoun),
		NewPosTag("WRB", InterrogativeAdverb),
		NewPosTag(".", SentenceFinalPunctuation),
		NewPosTag(",", Comma),
		NewCategoryTag(":", Punctuation),
		NewPosTag("(", OpenBracket),
		NewPosTag(")", CloseBracket),
		NewPosTag("-LRB-", OpenBracket),
		NewPosTag("-RRB-", CloseBracket),
		NewPosTag("``", Quote),
		NewPosTag("''", Quote),
		NewPosTag("#", Symbol),
		NewPosTag("$", Symbol),
	})
}

// Universal returns the language independent Universal Dependencies tag set.
func Universal() *TagSet {
	return mustTagSet(NewTagSet("universal"), []PosTag{
		NewCategoryTag("ADJ", Adjective),
		NewCategoryTag("ADP", Adposition),
		NewCategoryTag("ADV", Adverb),
		NewPosTag("AUX", AuxiliaryVerb),
		NewPosTag("CCONJ", CoordinatingConjunction),
		NewCategoryTag("DET", Determiner),
		NewCategoryTag("INTJ", Interjection),
		NewPosTag("NOUN", CommonNoun),
		NewCategoryTag("NUM", Numeral),
		NewPosTag("PART", Particle),
		NewCategoryTag("PRON", Pronoun),
		NewPosTag("PROPN", ProperNoun),
		NewCategoryTag("PUNCT", Punctuation),
		NewPosTag("SCONJ", SubordinatingConjunction),
		NewPosTag("SYM", Symbol),
		NewPosTag("VERB", MainVerb),
		NewCategoryTag("X", Residual),
	})
}

func mustTagSet(ts *TagSet, tags []PosTag) *TagSet {
	for _, t := range tags {
		if err := ts.Add(t); err != nil {
			panic(err)
		}
	}
	return ts
}
