/*Package column defines the typed values that may appear in a MAF column,
  and a registry of codecs that map a column's declared type tag to a
  token<->value converter.  Schemes reference codecs by tag; decoding a token
  through the wrong codec, or a malformed token through the right one, yields
  a ParseError.  The empty token is the null sentinel for nullable types.
*/
package column
