/*Package scheme resolves versioned, inheritable MAF scheme descriptors
  into immutable effective column lists.  A descriptor may extend a single
  parent; resolution walks the extends chain root-first, overrides inherited
  columns by name, appends new ones, and then removes the child's filtered
  names.  Resolved schemes are cached on the Registry and never invalidated.
*/
package scheme
